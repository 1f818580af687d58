package portability

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getquiver/quiver/pkg/collection"
)

const petstoreSpec = `openapi: 3.0.4
info:
  title: Swagger Petstore
  version: 1.0.12
servers:
  - url: /v3
security:
  - api_key: []
paths:
  /pet:
    put:
      tags: [pet]
      summary: Update an existing pet
      operationId: updatePet
      responses: {"200": {description: ok}}
    post:
      tags: [pet]
      summary: Add a new pet to the store
      operationId: addPet
      responses: {"200": {description: ok}}
  /pet/findByStatus:
    get:
      tags: [pet]
      operationId: findPetsByStatus
      parameters:
        - {name: status, in: query, schema: {type: string}}
      responses: {"200": {description: ok}}
  /pet/findByTags:
    get:
      tags: [pet]
      operationId: findPetsByTags
      parameters:
        - {name: tags, in: query, schema: {type: array, items: {type: string}}}
      responses: {"200": {description: ok}}
  /pet/{petId}:
    get:
      tags: [pet]
      operationId: getPetById
      parameters:
        - {name: petId, in: path, required: true, schema: {type: integer}}
      responses: {"200": {description: ok}}
    post:
      tags: [pet]
      operationId: updatePetWithForm
      parameters:
        - {name: petId, in: path, required: true, schema: {type: integer}}
        - {name: name, in: query, schema: {type: string}}
        - {name: status, in: query, schema: {type: string}}
      responses: {"200": {description: ok}}
    delete:
      tags: [pet]
      operationId: deletePet
      parameters:
        - {name: api_key, in: header, schema: {type: string}}
        - {name: petId, in: path, required: true, schema: {type: integer}}
      responses: {"200": {description: ok}}
  /pet/{petId}/uploadImage:
    post:
      tags: [pet]
      operationId: uploadFile
      parameters:
        - {name: petId, in: path, required: true, schema: {type: integer}}
        - {name: additionalMetadata, in: query, schema: {type: string}}
      responses: {"200": {description: ok}}
  /store/inventory:
    get:
      tags: [store]
      operationId: getInventory
      responses: {"200": {description: ok}}
  /store/order:
    post:
      tags: [store]
      operationId: placeOrder
      responses: {"200": {description: ok}}
  /store/order/{orderId}:
    get:
      tags: [store]
      operationId: getOrderById
      parameters:
        - {name: orderId, in: path, required: true, schema: {type: integer}}
      responses: {"200": {description: ok}}
    delete:
      tags: [store]
      operationId: deleteOrder
      parameters:
        - {name: orderId, in: path, required: true, schema: {type: integer}}
      responses: {"200": {description: ok}}
  /user:
    post:
      tags: [user]
      operationId: createUser
      responses: {"200": {description: ok}}
  /user/createWithList:
    post:
      tags: [user]
      operationId: createUsersWithListInput
      responses: {"200": {description: ok}}
  /user/login:
    get:
      tags: [user]
      operationId: loginUser
      parameters:
        - {name: username, in: query, schema: {type: string}}
        - {name: password, in: query, schema: {type: string}}
      responses: {"200": {description: ok}}
  /user/logout:
    get:
      tags: [user]
      operationId: logoutUser
      responses: {"200": {description: ok}}
  /user/{username}:
    get:
      tags: [user]
      operationId: getUserByName
      parameters:
        - {name: username, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}
    put:
      tags: [user]
      operationId: updateUser
      parameters:
        - {name: username, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}
    delete:
      tags: [user]
      operationId: deleteUser
      parameters:
        - {name: username, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}
components:
  securitySchemes:
    api_key:
      type: apiKey
      name: api_key
      in: header
`

func TestOpenAPIImportPetstore(t *testing.T) {
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(petstoreSpec))
	require.NoError(t, err)

	assert.Equal(t, "Swagger Petstore", col.Name)

	require.Equal(t, 1, col.Profiles.Len())
	profile, ok := col.Profile("server-1")
	require.True(t, ok)
	assert.Equal(t, "/v3", profile.Data["host"])

	// One folder per tag, in path declaration order.
	require.Equal(t, []string{"tag/pet", "tag/store", "tag/user"}, col.Root.Children.Keys())

	tests := []struct {
		folder   string
		name     string
		requests []string
	}{
		{
			folder: "tag/pet",
			name:   "pet",
			requests: []string{
				"updatePet", "addPet", "findPetsByStatus", "findPetsByTags",
				"getPetById", "updatePetWithForm", "deletePet", "uploadFile",
			},
		},
		{
			folder:   "tag/store",
			name:     "store",
			requests: []string{"getInventory", "placeOrder", "getOrderById", "deleteOrder"},
		},
		{
			folder: "tag/user",
			name:   "user",
			requests: []string{
				"createUser", "createUsersWithListInput", "loginUser",
				"logoutUser", "getUserByName", "updateUser", "deleteUser",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.folder, func(t *testing.T) {
			folder, ok := col.Root.Folder(tt.folder)
			require.True(t, ok)
			assert.Equal(t, tt.name, folder.Name)
			assert.Equal(t, tt.requests, folder.Children.Keys())
		})
	}

	pet, ok := col.Root.Folder("tag/pet")
	require.True(t, ok)

	// Every URL is host-relative with path params rewritten.
	for _, req := range pet.Requests() {
		assert.True(t, len(req.URL) > 8 && req.URL[:8] == "{{host}}", "url %q", req.URL)
	}
	getPet, ok := pet.Request("getPetById")
	require.True(t, ok)
	assert.Equal(t, "GET", getPet.Method)
	assert.Equal(t, "{{host}}/pet/{{petId}}", getPet.URL)

	// Declared query parameters become empty-valued entries.
	find, ok := pet.Request("findPetsByStatus")
	require.True(t, ok)
	value, ok := find.Query.Get("status")
	require.True(t, ok)
	assert.Equal(t, "", value)

	// api_key is an apiKey scheme in the global security requirements, so
	// its declared header parameter gets a template value.
	deletePet, ok := pet.Request("deletePet")
	require.True(t, ok)
	key, ok := deletePet.Headers.Get("api_key")
	require.True(t, ok)
	assert.Equal(t, "{{api_key}}", key)
}

func TestOpenAPIImportNoServers(t *testing.T) {
	spec := `openapi: 3.0.0
info: {title: Bare, version: "1.0"}
paths:
  /ping:
    get:
      operationId: ping
      responses: {"200": {description: ok}}
`
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(spec))
	require.NoError(t, err)

	require.Equal(t, 1, col.Profiles.Len())
	profile, ok := col.Profile("default")
	require.True(t, ok)
	assert.Equal(t, "", profile.Data["host"])

	// Untagged operations land at the root.
	_, ok = col.Root.Request("ping")
	assert.True(t, ok)
}

func TestOpenAPIImportAbsoluteServerURL(t *testing.T) {
	spec := `openapi: 3.0.0
info: {title: Hosted, version: "1.0"}
servers:
  - url: https://api.example.com/api/v3
paths: {}
`
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(spec))
	require.NoError(t, err)

	profile, ok := col.Profile("server-1")
	require.True(t, ok)
	assert.Equal(t, "/api/v3", profile.Data["host"])
}

func TestOpenAPIImportPathDeclarationOrder(t *testing.T) {
	spec := `{
  "openapi": "3.0.0",
  "info": {"title": "Ordered", "version": "1.0"},
  "paths": {
    "/zebra": {"get": {"operationId": "zebra", "responses": {"200": {"description": "ok"}}}},
    "/alpha": {"get": {"operationId": "alpha", "responses": {"200": {"description": "ok"}}}},
    "/middle": {"get": {"operationId": "middle", "responses": {"200": {"description": "ok"}}}}
  }
}`
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(spec))
	require.NoError(t, err)

	assert.Equal(t, []string{"zebra", "alpha", "middle"}, col.Root.Children.Keys())
}

func TestOpenAPIImportOperationDeclarationOrder(t *testing.T) {
	spec := `openapi: 3.0.0
info: {title: Ordered, version: "1.0"}
paths:
  /thing:
    post:
      operationId: createThing
      responses: {"200": {description: ok}}
    put:
      operationId: replaceThing
      responses: {"200": {description: ok}}
    get:
      operationId: getThing
      responses: {"200": {description: ok}}
`
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(spec))
	require.NoError(t, err)

	// Operations keep the order the document declares them in, not a
	// fixed verb order.
	assert.Equal(t, []string{"createThing", "replaceThing", "getThing"}, col.Root.Children.Keys())
}

func TestOpenAPIImportTagFolding(t *testing.T) {
	spec := `openapi: 3.0.0
info: {title: Folded, version: "1.0"}
paths:
  /a:
    get:
      tags: [Pet Store]
      operationId: a
      responses: {"200": {description: ok}}
  /b:
    get:
      tags: [pet-store]
      operationId: b
      responses: {"200": {description: ok}}
`
	importer := &OpenAPIImporter{}
	col, err := importer.Import([]byte(spec))
	require.NoError(t, err)

	// Case- and punctuation-insensitive folder keys collapse both tags
	// into one folder named after the first encounter.
	require.Equal(t, []string{"tag/pet-store"}, col.Root.Children.Keys())
	folder, ok := col.Root.Folder("tag/pet-store")
	require.True(t, ok)
	assert.Equal(t, "Pet Store", folder.Name)
	assert.Equal(t, []string{"a", "b"}, folder.Children.Keys())
}

func TestOpenAPIImportDocumentSortsPaths(t *testing.T) {
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info:    &openapi3.Info{Title: "Parsed", Version: "1.0"},
		Paths:   openapi3.NewPaths(),
	}
	for _, path := range []string{"/zebra", "/alpha"} {
		doc.Paths.Set(path, &openapi3.PathItem{
			Get: &openapi3.Operation{OperationID: "get-" + path[1:]},
		})
	}

	importer := &OpenAPIImporter{}
	col, err := importer.ImportDocument(doc)
	require.NoError(t, err)

	// With no raw bytes to recover declaration order from, paths fall
	// back to sorted order.
	assert.Equal(t, []string{"get-alpha", "get-zebra"}, col.Root.Children.Keys())
}

func TestOpenAPIImportInvalid(t *testing.T) {
	importer := &OpenAPIImporter{}
	_, err := importer.Import([]byte("{not an openapi document"))
	require.Error(t, err)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, FormatOpenAPI, importErr.Format)
}

func TestOpenAPIImportDuplicateOperationID(t *testing.T) {
	spec := `openapi: 3.0.0
info: {title: Dup, version: "1.0"}
paths:
  /a:
    get:
      operationId: same
      responses: {"200": {description: ok}}
  /b:
    get:
      operationId: same
      responses: {"200": {description: ok}}
`
	importer := &OpenAPIImporter{}
	_, err := importer.Import([]byte(spec))
	require.Error(t, err)

	var dup *collection.DuplicateIdentifierError
	assert.ErrorAs(t, err, &dup)
}
