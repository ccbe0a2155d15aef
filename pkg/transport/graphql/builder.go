package graphql

import (
	"fmt"

	genqlient "github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/saturnines/factsheet-tools/pkg/errors"
)

// Builder assembles a GraphQL request from a query document and variables.
type Builder struct {
	Query     string
	OpName    string
	Variables map[string]any
}

// NewBuilder sets up a Builder for query.
func NewBuilder(query string, opts ...BuilderOption) *Builder {
	b := &Builder{Query: query}
	b.ApplyOptions(opts...)
	return b
}

// Build validates the document and returns the request to send. The
// operation name defaults to the name of the first operation in the document.
func (b *Builder) Build() (*genqlient.Request, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: b.Query})
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrValidation, "invalid GraphQL document")
	}
	if len(doc.Operations) == 0 {
		return nil, errors.WrapError(fmt.Errorf("no operation defined"), errors.ErrValidation, "invalid GraphQL document")
	}

	opName := b.OpName
	if opName == "" {
		opName = doc.Operations[0].Name
	}

	req := &genqlient.Request{
		Query:  b.Query,
		OpName: opName,
	}
	if len(b.Variables) > 0 {
		req.Variables = b.Variables
	}
	return req, nil
}

// IsMutation reports whether the first operation of query is a mutation.
// Unparseable documents are not mutations.
func IsMutation(query string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil || len(doc.Operations) == 0 {
		return false
	}
	return doc.Operations[0].Operation == ast.Mutation
}
