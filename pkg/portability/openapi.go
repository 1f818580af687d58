package portability

import (
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/getquiver/quiver/pkg/collection"
	"github.com/getquiver/quiver/pkg/logging"
)

func init() {
	RegisterImporter(&OpenAPIImporter{})
}

// OpenAPIImporter imports OpenAPI 3.x specifications, grouping operations
// by their first tag into folders.
type OpenAPIImporter struct {
	// Logger receives import degradation warnings. Defaults to Nop.
	Logger *slog.Logger
}

// Import parses an OpenAPI specification and returns a Collection. The raw
// bytes are also used to recover path declaration order, which the parsed
// document cannot provide (its paths container is map-backed).
func (i *OpenAPIImporter) Import(data []byte) (*collection.Collection, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &ImportError{
			Format:  FormatOpenAPI,
			Message: "failed to parse OpenAPI specification",
			Cause:   err,
		}
	}
	return i.importDocument(doc, declarationOrder(data))
}

// ImportDocument converts an already-parsed OpenAPI document. Without raw
// bytes to recover declaration order from, paths are visited in sorted
// order and operations in a fixed verb order, for determinism.
func (i *OpenAPIImporter) ImportDocument(doc *openapi3.T) (*collection.Collection, error) {
	return i.importDocument(doc, nil)
}

// Format returns FormatOpenAPI.
func (i *OpenAPIImporter) Format() Format {
	return FormatOpenAPI
}

func (i *OpenAPIImporter) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return logging.Nop()
}

// operationEntry pairs a verb with its operation.
type operationEntry struct {
	method string
	op     *openapi3.Operation
}

// fallbackVerbOrder is used when the raw document is not available to
// recover per-path verb declaration order from.
var fallbackVerbOrder = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

func importableMethod(method string) bool {
	switch method {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS":
		return true
	default:
		return false
	}
}

// pathOperations returns a path's operations in declaration order where
// known, with any stragglers appended in the fixed fallback order.
func pathOperations(item *openapi3.PathItem, declaredVerbs []string) []operationEntry {
	var entries []operationEntry
	seen := make(map[string]bool)
	for _, verb := range declaredVerbs {
		method := strings.ToUpper(verb)
		if !importableMethod(method) || seen[method] {
			continue
		}
		if op := item.GetOperation(method); op != nil {
			entries = append(entries, operationEntry{method, op})
			seen[method] = true
		}
	}
	for _, method := range fallbackVerbOrder {
		if seen[method] {
			continue
		}
		if op := item.GetOperation(method); op != nil {
			entries = append(entries, operationEntry{method, op})
		}
	}
	return entries
}

func (i *OpenAPIImporter) importDocument(doc *openapi3.T, order *documentOrder) (*collection.Collection, error) {
	name := "Imported API"
	if doc.Info != nil && doc.Info.Title != "" {
		name = doc.Info.Title
	}
	out := collection.New(name)

	if err := i.importServers(doc, out); err != nil {
		return nil, err
	}

	apiKeyParams := apiKeyParameterNames(doc)
	globalKeys := globalAPIKeyNames(doc, apiKeyParams)

	// tag folders are created on first encounter; the key is a case- and
	// punctuation-insensitive slug so "Pet Store" and "pet-store" land in
	// the same folder.
	folders := make(map[string]*collection.Folder)

	for _, path := range orderedPaths(doc, order.pathOrder()) {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, entry := range pathOperations(item, order.verbOrder(path)) {
			req, err := i.operationToRequest(path, entry.method, item, entry.op, apiKeyParams, globalKeys)
			if err != nil {
				return nil, err
			}

			parent := out.Root
			if len(entry.op.Tags) > 0 {
				tag := entry.op.Tags[0]
				key := "tag/" + slugify(tag)
				folder, ok := folders[key]
				if !ok {
					folder = collection.NewFolder(tag)
					folders[key] = folder
					if err := out.Root.Add(key, folder); err != nil {
						return nil, &ImportError{Format: FormatOpenAPI, Message: "conflicting tag folder", Cause: err}
					}
				}
				parent = folder
			}

			id := requestID(entry.method, path, entry.op)
			if err := parent.Add(id, req); err != nil {
				return nil, &ImportError{Format: FormatOpenAPI, Message: "conflicting operation identifier", Cause: err}
			}
		}
	}

	return out, nil
}

// importServers synthesizes one profile per declared server, or a single
// default profile when the document declares none.
func (i *OpenAPIImporter) importServers(doc *openapi3.T, out *collection.Collection) error {
	if len(doc.Servers) == 0 {
		return out.AddProfile(&collection.Profile{
			ID:   "default",
			Name: "Default",
			Data: map[string]string{"host": ""},
		})
	}

	for idx, server := range doc.Servers {
		name := server.Description
		if name == "" {
			name = server.URL
		}
		profile := &collection.Profile{
			ID:   collection.ProfileID("server-" + strconv.Itoa(idx+1)),
			Name: name,
			Data: map[string]string{"host": serverHost(server.URL)},
		}
		if err := out.AddProfile(profile); err != nil {
			return &ImportError{Format: FormatOpenAPI, Message: "conflicting server profile", Cause: err}
		}
	}
	return nil
}

func (i *OpenAPIImporter) operationToRequest(path, method string, item *openapi3.PathItem, op *openapi3.Operation, apiKeyParams map[string]bool, globalKeys map[string]bool) (*collection.Request, error) {
	name := op.Summary
	if name == "" {
		name = method + " " + path
	}

	req, err := collection.NewRequest(name, method, "{{host}}"+rewritePathParams(path))
	if err != nil {
		return nil, &ImportError{Format: FormatOpenAPI, Message: "invalid operation", Cause: err}
	}

	params := append(append(openapi3.Parameters{}, item.Parameters...), op.Parameters...)
	for _, ref := range params {
		if ref.Value == nil {
			continue
		}
		param := ref.Value

		// Parameters used for API-key authentication always go into
		// headers, regardless of their declared location.
		if apiKeyParams[param.Name] {
			value := ""
			if globalKeys[param.Name] {
				value = "{{api_key}}"
			}
			if err := req.SetHeader(param.Name, value); err != nil {
				return nil, &ImportError{Format: FormatOpenAPI, Message: "invalid parameter", Cause: err}
			}
			continue
		}

		switch param.In {
		case openapi3.ParameterInQuery:
			err = req.SetQuery(param.Name, "")
		case openapi3.ParameterInHeader:
			err = req.SetHeader(param.Name, "")
		case openapi3.ParameterInPath:
			// Already a {{placeholder}} in the URL.
			continue
		default:
			i.logger().Warn("skipping parameter in unsupported location",
				"name", param.Name, "in", param.In)
			continue
		}
		if err != nil {
			return nil, &ImportError{Format: FormatOpenAPI, Message: "invalid parameter", Cause: err}
		}
	}

	// Body and authentication stay empty: the importer under-populates
	// rather than guessing content types it cannot validate.
	return req, nil
}

// apiKeyParameterNames collects the parameter names of every apiKey
// security scheme in the document.
func apiKeyParameterNames(doc *openapi3.T) map[string]bool {
	names := make(map[string]bool)
	if doc.Components == nil {
		return names
	}
	for _, ref := range doc.Components.SecuritySchemes {
		if ref.Value != nil && ref.Value.Type == "apiKey" && ref.Value.Name != "" {
			names[ref.Value.Name] = true
		}
	}
	return names
}

// globalAPIKeyNames returns the apiKey parameter names referenced by the
// document's global security requirements.
func globalAPIKeyNames(doc *openapi3.T, apiKeyParams map[string]bool) map[string]bool {
	names := make(map[string]bool)
	if doc.Components == nil {
		return names
	}
	for _, requirement := range doc.Security {
		for schemeName := range requirement {
			ref, ok := doc.Components.SecuritySchemes[schemeName]
			if !ok || ref.Value == nil {
				continue
			}
			if apiKeyParams[ref.Value.Name] {
				names[ref.Value.Name] = true
			}
		}
	}
	return names
}

// orderedPaths returns the document's paths in declaration order where
// known, with any stragglers appended in sorted order.
func orderedPaths(doc *openapi3.T, declared []string) []string {
	if doc.Paths == nil {
		return nil
	}
	all := doc.Paths.Map()
	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))

	for _, path := range declared {
		if _, ok := all[path]; ok && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	var rest []string
	for path := range all {
		if !seen[path] {
			rest = append(rest, path)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// documentOrder is the declaration order recovered from a raw document:
// the paths in source order and, per path, the mapping keys of the path
// item (which include its verbs) in source order.
type documentOrder struct {
	paths []string
	verbs map[string][]string
}

func (o *documentOrder) pathOrder() []string {
	if o == nil {
		return nil
	}
	return o.paths
}

func (o *documentOrder) verbOrder(path string) []string {
	if o == nil {
		return nil
	}
	return o.verbs[path]
}

// declarationOrder reads the paths mapping from the raw document in source
// order. yaml.v3 handles both YAML and JSON specs.
func declarationOrder(data []byte) *documentOrder {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "paths" {
			continue
		}
		paths := mapping.Content[i+1]
		if paths.Kind != yaml.MappingNode {
			return nil
		}
		order := &documentOrder{verbs: make(map[string][]string)}
		for j := 0; j+1 < len(paths.Content); j += 2 {
			path := paths.Content[j].Value
			order.paths = append(order.paths, path)

			item := paths.Content[j+1]
			if item.Kind != yaml.MappingNode {
				continue
			}
			for k := 0; k < len(item.Content); k += 2 {
				order.verbs[path] = append(order.verbs[path], item.Content[k].Value)
			}
		}
		return order
	}
	return nil
}

// rewritePathParams rewrites OpenAPI {param} placeholders into {{param}}
// template references.
func rewritePathParams(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '{':
			b.WriteString("{{")
		case '}':
			b.WriteString("}}")
		default:
			b.WriteByte(path[i])
		}
	}
	return b.String()
}

// requestID derives a stable identifier for an operation.
func requestID(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return slugify(method + " " + path)
}

// slugify lowercases and strips everything but letters and digits,
// keeping '/'-separated and '-'-separated words apart with hyphens.
func slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// serverHost extracts the host variable value for a server entry. Relative
// server URLs ("/v3") are kept as-is; absolute URLs contribute only their
// path, since the scheme and authority belong to the execution layer.
func serverHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return u.Path
	}
	return raw
}
