// Package render turns records and graphs into tabular views and renders
// them as terminal tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/ontology"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// DefaultDelimiter joins multi-valued cells.
const DefaultDelimiter = ", "

// View is a header row plus data rows.
type View struct {
	Headers []string
	Rows    [][]string
}

// Options controls how cells are produced.
type Options struct {
	// Delimiter joins multi-valued cells. Defaults to DefaultDelimiter.
	Delimiter string

	// Prefixes compacts IRIs to CURIEs when set.
	Prefixes *store.PrefixMap
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) iri(value string) string {
	if o.Prefixes == nil {
		return value
	}
	return o.Prefixes.CompactOrSelf(value)
}

func (o Options) iris(values []string) string {
	cells := make([]string, len(values))
	for i, value := range values {
		cells[i] = o.iri(value)
	}
	return strings.Join(cells, o.delimiter())
}

// Classes builds the class view: Label, IRI, SubClassOf, Comment.
func Classes(records []ontology.ClassRecord, options Options) View {
	view := View{Headers: []string{"Label", "IRI", "SubClassOf", "Comment"}}
	for _, record := range records {
		view.Rows = append(view.Rows, []string{
			record.Label,
			options.iri(record.IRI),
			options.iris(record.Parents),
			record.Comment.String(),
		})
	}
	return view
}

// Properties builds the property view: Label, IRI, Kind, Domain, Range, Comment.
func Properties(records []ontology.PropertyRecord, options Options) View {
	view := View{Headers: []string{"Label", "IRI", "Kind", "Domain", "Range", "Comment"}}
	for _, record := range records {
		view.Rows = append(view.Rows, []string{
			record.Label,
			options.iri(record.IRI),
			string(record.Kind),
			options.iris(record.Domain),
			options.iris(record.Range),
			record.Comment.String(),
		})
	}
	return view
}

// GraphNodes lists the nodes of a graph with the number of edges touching each.
func GraphNodes(g *graph.NeighbourhoodGraph, options Options) View {
	degree := make(map[string]int)
	for _, edge := range g.Edges() {
		degree[edge.Source]++
		if edge.Target != edge.Source {
			degree[edge.Target]++
		}
	}

	view := View{Headers: []string{"Role", "Label", "IRI", "Edges"}}
	for _, node := range g.Nodes() {
		view.Rows = append(view.Rows, []string{
			string(node.Role),
			node.Label,
			options.iri(node.ID),
			fmt.Sprint(degree[node.ID]),
		})
	}
	return view
}

// Description lists the fields of a node description, one per row.
func Description(description ontology.NodeDescription, options Options) View {
	view := View{Headers: []string{"Field", "Value"}}
	add := func(field, value string) {
		view.Rows = append(view.Rows, []string{field, value})
	}

	add("IRI", description.IRI)
	if !description.Known {
		add("Known", "no statement mentions this IRI")
		return view
	}
	add("Label", description.Label)
	add("Comment", description.Comment.String())
	add("Types", options.iris(description.Types))
	add("Parents", options.iris(description.Parents))
	add("Children", options.iris(description.Children))
	add("Domain of", options.iris(description.DomainOf))
	add("Range of", options.iris(description.RangeOf))
	return view
}

// Overview lists the summary counts and ontology metadata.
func Overview(overview ontology.Overview) View {
	view := View{Headers: []string{"Metric", "Value"}}
	add := func(metric string, value any) {
		view.Rows = append(view.Rows, []string{metric, fmt.Sprint(value)})
	}

	add("Triples", overview.Triples)
	add("Classes", overview.Classes)

	kinds := make([]string, 0, len(overview.Properties))
	for kind := range overview.Properties {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		add("Properties ("+kind+")", overview.Properties[ontology.PropertyKind(kind)])
	}

	if metadata := overview.Ontology; metadata != nil {
		add("Ontology", metadata.IRI)
		for _, field := range []struct {
			name  string
			value ontology.Text
		}{
			{"Title", metadata.Title},
			{"Version", metadata.VersionInfo},
			{"Version IRI", metadata.VersionIRI},
			{"Description", metadata.Description},
		} {
			if field.value.Present {
				add(field.name, field.value.Value)
			}
		}
	}
	return view
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Table renders a view as a bordered terminal table.
func Table(view View) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(view.Headers...).
		Rows(view.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// WriteTable writes the rendered table and a trailing newline.
func WriteTable(w io.Writer, view View) error {
	_, err := fmt.Fprintln(w, Table(view))
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
