package portability

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getquiver/quiver/pkg/collection"
)

const insomniaExport = `{
  "_type": "export",
  "__export_format": 4,
  "__export_source": "insomnia.desktop.app:v2023.5.8",
  "resources": [
    {"_id": "wrk_1", "_type": "workspace", "parentId": null, "name": "My Workspace"},
    {
      "_id": "env_1",
      "_type": "environment",
      "parentId": "wrk_1",
      "name": "Base Environment",
      "data": {"host": "https://api.example.com", "retries": 3, "debug": true}
    },
    {"_id": "fld_outer", "_type": "request_group", "parentId": "wrk_1", "name": "My Folder"},
    {"_id": "fld_inner", "_type": "request_group", "parentId": "fld_outer", "name": "Inner Folder"},
    {
      "_id": "req_login",
      "_type": "request",
      "parentId": "fld_outer",
      "name": "Login",
      "method": "POST",
      "url": "{{ _.host }}/login",
      "headers": [
        {"name": "Content-Type", "value": "application/json"},
        {"name": "X-Debug", "value": "1", "disabled": true}
      ],
      "body": {
        "mimeType": "application/json",
        "text": "{\"user\": \"{{ _.user }}\"}"
      }
    },
    {
      "_id": "req_6ea8a29166c04749ae6b38b344ec6d3b",
      "_type": "request",
      "parentId": "wrk_1",
      "name": "Token",
      "method": "POST",
      "url": "{{ _.host }}/token"
    },
    {
      "_id": "req_profile",
      "_type": "request",
      "parentId": "fld_inner",
      "name": "Get Profile",
      "method": "GET",
      "url": "{{ _.host }}/profile",
      "parameters": [{"name": "full", "value": "true"}],
      "authentication": {
        "type": "bearer",
        "token": " {% response 'body', 'req_6ea8a29166c04749ae6b38b344ec6d3b', 'b64::JC50b2tlbg==::46b', 'when-expired', 60 %}"
      }
    },
    {
      "_id": "req_legacy",
      "_type": "request",
      "parentId": "wrk_1",
      "name": "Legacy",
      "method": "GET",
      "url": "{{ _.host }}/legacy",
      "authentication": {"type": "digest", "username": "admin", "password": "hunter2"}
    },
    {
      "_id": "req_upload",
      "_type": "request",
      "parentId": "wrk_1",
      "name": "Upload",
      "method": "POST",
      "url": "{{ _.host }}/upload",
      "body": {
        "mimeType": "multipart/form-data",
        "params": [
          {"name": "note", "value": "profile picture"},
          {"name": "avatar", "type": "file", "fileName": "/tmp/avatar.png"}
        ]
      }
    }
  ]
}`

func importInsomniaFixture(t *testing.T) *collection.Collection {
	t.Helper()
	importer := &InsomniaImporter{}
	col, err := importer.Import([]byte(insomniaExport))
	require.NoError(t, err)
	return col
}

func TestInsomniaImportWorkspace(t *testing.T) {
	col := importInsomniaFixture(t)
	assert.Equal(t, "My Workspace", col.Name)
}

func TestInsomniaImportEnvironment(t *testing.T) {
	col := importInsomniaFixture(t)

	require.Equal(t, 1, col.Profiles.Len())
	profile, ok := col.Profile("env_1")
	require.True(t, ok)
	assert.Equal(t, "Base Environment", profile.Name)
	assert.Equal(t, map[string]string{
		"host":    "https://api.example.com",
		"retries": "3",
		"debug":   "true",
	}, profile.Data)
}

func TestInsomniaImportFolderTree(t *testing.T) {
	col := importInsomniaFixture(t)

	// Workspace children keep export array order.
	assert.Equal(t,
		[]string{"fld_outer", "req_6ea8a29166c04749ae6b38b344ec6d3b", "req_legacy", "req_upload"},
		col.Root.Children.Keys())

	outer, ok := col.Root.Folder("fld_outer")
	require.True(t, ok)
	assert.Equal(t, "My Folder", outer.Name)

	// Inner Folder precedes its sibling request.
	assert.Equal(t, []string{"fld_inner", "req_login"}, outer.Children.Keys())

	inner, ok := outer.Folder("fld_inner")
	require.True(t, ok)
	assert.Equal(t, "Inner Folder", inner.Name)
	assert.Equal(t, []string{"req_profile"}, inner.Children.Keys())
}

func TestInsomniaImportVariableRewrite(t *testing.T) {
	col := importInsomniaFixture(t)

	outer, _ := col.Root.Folder("fld_outer")
	login, ok := outer.Request("req_login")
	require.True(t, ok)
	assert.Equal(t, "{{host}}/login", login.URL)

	contentType, ok := login.Headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)

	// Disabled pairs are skipped.
	assert.False(t, login.Headers.Has("X-Debug"))
}

func TestInsomniaImportJSONBody(t *testing.T) {
	col := importInsomniaFixture(t)

	outer, _ := col.Root.Folder("fld_outer")
	login, _ := outer.Request("req_login")
	require.Equal(t, collection.BodyJSON, login.Body.Kind)
	assert.Equal(t, map[string]any{"user": "{{user}}"}, login.Body.JSON)
}

func TestInsomniaImportResponseTag(t *testing.T) {
	col := importInsomniaFixture(t)

	outer, _ := col.Root.Folder("fld_outer")
	inner, _ := outer.Folder("fld_inner")
	profile, ok := inner.Request("req_profile")
	require.True(t, ok)

	require.Equal(t, collection.AuthBearer, profile.Auth.Kind)

	// Tag chunks survive byte-identical, including argument order and
	// quoting, because downstream evaluation is positional.
	assert.Equal(t,
		" {% response 'body', 'req_6ea8a29166c04749ae6b38b344ec6d3b', 'b64::JC50b2tlbg==::46b', 'when-expired', 60 %}",
		profile.Auth.Token)

	// The referenced request is registered as a response-backed chain.
	chain, ok := col.Chain("req_6ea8a29166c04749ae6b38b344ec6d3b")
	require.True(t, ok)
	assert.Equal(t, collection.ChainSourceResponse, chain.Source.Kind)
	assert.Equal(t, "req_6ea8a29166c04749ae6b38b344ec6d3b", chain.Source.Request)

	full, ok := profile.Query.Get("full")
	require.True(t, ok)
	assert.Equal(t, "true", full)
}

func TestInsomniaImportUnsupportedAuth(t *testing.T) {
	col := importInsomniaFixture(t)

	legacy, ok := col.Root.Request("req_legacy")
	require.True(t, ok)
	assert.Equal(t, collection.AuthUnsupported, legacy.Auth.Kind)
	assert.Equal(t, "digest", legacy.Auth.Original)
}

func TestInsomniaImportMultipartFile(t *testing.T) {
	col := importInsomniaFixture(t)

	upload, ok := col.Root.Request("req_upload")
	require.True(t, ok)
	require.Equal(t, collection.BodyFormMultipart, upload.Body.Kind)

	note, ok := upload.Body.Form.Get("note")
	require.True(t, ok)
	assert.Equal(t, "profile picture", note)

	avatar, ok := upload.Body.Form.Get("avatar")
	require.True(t, ok)
	re := regexp.MustCompile(`^\{% chain '(file_[0-9a-f]{32})' %\}$`)
	match := re.FindStringSubmatch(avatar)
	require.NotNil(t, match, "avatar value %q", avatar)

	chain, ok := col.Chain(collection.ChainID(match[1]))
	require.True(t, ok)
	assert.Equal(t, collection.ChainSourceFile, chain.Source.Kind)
	assert.Equal(t, "/tmp/avatar.png", chain.Source.Path)
}

func TestInsomniaImportInvalid(t *testing.T) {
	importer := &InsomniaImporter{}
	_, err := importer.Import([]byte("not json"))
	require.Error(t, err)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, FormatInsomnia, importErr.Format)
}

func TestInsomniaImportUnparseableTemplateKeptVerbatim(t *testing.T) {
	export := `{
  "_type": "export",
  "__export_format": 4,
  "resources": [
    {"_id": "wrk_1", "_type": "workspace", "parentId": null, "name": "W"},
    {
      "_id": "req_1",
      "_type": "request",
      "parentId": "wrk_1",
      "name": "Broken",
      "method": "GET",
      "url": "{{ _.host }}/x/{{ open"
    }
  ]
}`
	importer := &InsomniaImporter{}
	col, err := importer.Import([]byte(export))
	require.NoError(t, err)

	req, ok := col.Root.Request("req_1")
	require.True(t, ok)
	assert.Equal(t, "{{ _.host }}/x/{{ open", req.URL)
}
