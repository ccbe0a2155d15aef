package factsheet

const (
	listIDsQuery = `query ListFactSheetIDs($first:Int,$after:String){
  op:allFactSheets(first:$first,after:$after){
    pageInfo{hasNextPage endCursor}
    edges{node{id}}
  }
}`

	archiveMutation = `mutation ArchiveFactSheet($id:ID!,$comment:String,$patches:[Patch]!){
  op:updateFactSheet(id:$id,comment:$comment,patches:$patches){factSheet{id}}
}`

	createMutation = `mutation CreateFactSheet($input:BaseFactSheetInput!,$patches:[Patch]){
  op:createFactSheet(input:$input,patches:$patches){factSheet{id}}
}`

	listTagsQuery = `query ListTags{
  op:allTags{asList{id name color tagGroup{id name}}}
}`

	facetsQuery = `query FactSheetFacets{
  op:allFactSheets{filterOptions{facets{facetKey keys:results{key name}}}}
}`

	taggedQuery = `query TaggedFactSheets($filter:FilterInput,$first:Int,$after:String){
  op:allFactSheets(filter:$filter,first:$first,after:$after){
    pageInfo{hasNextPage endCursor}
    edges{node{type tags{id name color tagGroup{id name}}}}
  }
}`
)

// Cursor variable and pageInfo location shared by the paged queries.
const cursorVar = "after"

var pageInfoPath = []string{"op", "pageInfo"}
