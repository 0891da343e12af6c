// Package store provides in-memory RDF triple storage and the vocabulary
// constants used to read ontology documents.
package store

// Namespace IRIs for the vocabularies an ontology document is read with.
const (
	// NamespaceRDF is the standard RDF namespace.
	NamespaceRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// NamespaceRDFS is the RDF Schema namespace.
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"

	// NamespaceOWL is the Web Ontology Language namespace.
	NamespaceOWL = "http://www.w3.org/2002/07/owl#"

	// NamespaceXSD is the XML Schema namespace for datatypes.
	NamespaceXSD = "http://www.w3.org/2001/XMLSchema#"

	// NamespaceDC is the Dublin Core elements namespace.
	NamespaceDC = "http://purl.org/dc/elements/1.1/"

	// NamespaceDCTerms is the Dublin Core terms namespace.
	NamespaceDCTerms = "http://purl.org/dc/terms/"

	// NamespaceSKOS is the Simple Knowledge Organization System namespace.
	NamespaceSKOS = "http://www.w3.org/2004/02/skos/core#"
)

// RDF and RDFS terms.
const (
	RDFType     = NamespaceRDF + "type"
	RDFProperty = NamespaceRDF + "Property"

	RDFSClass      = NamespaceRDFS + "Class"
	RDFSSubClassOf = NamespaceRDFS + "subClassOf"
	RDFSLabel      = NamespaceRDFS + "label"
	RDFSComment    = NamespaceRDFS + "comment"
	RDFSDomain     = NamespaceRDFS + "domain"
	RDFSRange      = NamespaceRDFS + "range"
)

// OWL terms.
const (
	OWLClass              = NamespaceOWL + "Class"
	OWLThing              = NamespaceOWL + "Thing"
	OWLObjectProperty     = NamespaceOWL + "ObjectProperty"
	OWLDatatypeProperty   = NamespaceOWL + "DatatypeProperty"
	OWLAnnotationProperty = NamespaceOWL + "AnnotationProperty"
	OWLOntology           = NamespaceOWL + "Ontology"
	OWLVersionInfo        = NamespaceOWL + "versionInfo"
	OWLVersionIRI         = NamespaceOWL + "versionIRI"
)

// Dublin Core terms used for ontology metadata.
const (
	DCTitle      = NamespaceDC + "title"
	DCTermsTitle = NamespaceDCTerms + "title"
)
