package portability

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"

	"github.com/getquiver/quiver/pkg/collection"
	"github.com/getquiver/quiver/pkg/logging"
	"github.com/getquiver/quiver/pkg/template"
	"github.com/getquiver/quiver/pkg/util"
)

func init() {
	RegisterImporter(&InsomniaImporter{})
}

// InsomniaExport is the top-level structure of an Insomnia workspace
// export (v4). Resources are a flat array linked by parentId.
type InsomniaExport struct {
	Type         string             `json:"_type"`
	ExportFormat int                `json:"__export_format"`
	Resources    []InsomniaResource `json:"resources"`
}

// InsomniaResource is one entry in the export's resources array. Which
// fields are meaningful depends on Type.
type InsomniaResource struct {
	ID       string `json:"_id"`
	Type     string `json:"_type"`
	ParentID string `json:"parentId"`
	Name     string `json:"name"`

	// environment
	Data map[string]any `json:"data,omitempty"`

	// request
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	Body           InsomniaBody   `json:"body,omitempty"`
	Parameters     []InsomniaPair `json:"parameters,omitempty"`
	Headers        []InsomniaPair `json:"headers,omitempty"`
	Authentication InsomniaAuth   `json:"authentication,omitempty"`
}

// InsomniaPair is a name/value entry used for query parameters and headers.
type InsomniaPair struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// InsomniaBody is a request body. MimeType selects the variant.
type InsomniaBody struct {
	MimeType string              `json:"mimeType,omitempty"`
	Text     string              `json:"text,omitempty"`
	Params   []InsomniaBodyParam `json:"params,omitempty"`
}

// InsomniaBodyParam is one form field. Type "file" fields carry a
// fileName instead of a value.
type InsomniaBodyParam struct {
	Name     string `json:"name"`
	Value    string `json:"value,omitempty"`
	Type     string `json:"type,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// InsomniaAuth is a request's authentication block.
type InsomniaAuth struct {
	Type     string `json:"type,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Resource types found in exports.
const (
	insomniaTypeWorkspace    = "workspace"
	insomniaTypeEnvironment  = "environment"
	insomniaTypeRequestGroup = "request_group"
	insomniaTypeRequest      = "request"
)

// InsomniaImporter imports Insomnia workspace exports.
type InsomniaImporter struct {
	// Logger receives import degradation warnings. Defaults to Nop.
	Logger *slog.Logger
}

// Import parses an Insomnia export and returns a Collection.
func (i *InsomniaImporter) Import(data []byte) (*collection.Collection, error) {
	var export InsomniaExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, &ImportError{
			Format:  FormatInsomnia,
			Message: "failed to parse export",
			Cause:   err,
		}
	}
	return i.ImportExport(&export)
}

// ImportExport converts an already-parsed export.
func (i *InsomniaImporter) ImportExport(export *InsomniaExport) (*collection.Collection, error) {
	name := "Imported Workspace"
	var workspaceID string
	for _, res := range export.Resources {
		if res.Type == insomniaTypeWorkspace {
			if res.Name != "" {
				name = res.Name
			}
			workspaceID = res.ID
			break
		}
	}

	out := collection.New(name)
	st := &insomniaImport{
		importer: i,
		out:      out,
	}

	// Resources link to their parent by ID; children keep the export
	// array's order within each parent.
	childrenByParent := make(map[string][]InsomniaResource)
	for _, res := range export.Resources {
		childrenByParent[res.ParentID] = append(childrenByParent[res.ParentID], res)
	}

	for _, res := range export.Resources {
		if res.Type != insomniaTypeEnvironment {
			continue
		}
		if err := st.importEnvironment(res); err != nil {
			return nil, err
		}
	}

	if err := st.importChildren(out.Root, workspaceID, childrenByParent); err != nil {
		return nil, err
	}

	return out, nil
}

// Format returns FormatInsomnia.
func (i *InsomniaImporter) Format() Format {
	return FormatInsomnia
}

func (i *InsomniaImporter) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return logging.Nop()
}

// insomniaImport carries per-run state so one importer value stays safe
// for concurrent use.
type insomniaImport struct {
	importer *InsomniaImporter
	out      *collection.Collection
}

func (s *insomniaImport) logger() *slog.Logger {
	return s.importer.logger()
}

func (s *insomniaImport) importEnvironment(res InsomniaResource) error {
	data := make(map[string]string, len(res.Data))
	for key, value := range res.Data {
		data[key] = s.rewrite(stringifyEnvValue(value))
	}
	return s.out.AddProfile(&collection.Profile{
		ID:   collection.ProfileID(res.ID),
		Name: res.Name,
		Data: data,
	})
}

func (s *insomniaImport) importChildren(parent *collection.Folder, parentID string, childrenByParent map[string][]InsomniaResource) error {
	for _, res := range childrenByParent[parentID] {
		switch res.Type {
		case insomniaTypeRequestGroup:
			folder := collection.NewFolder(res.Name)
			if err := parent.Add(res.ID, folder); err != nil {
				return &ImportError{Format: FormatInsomnia, Message: "conflicting folder identifier", Cause: err}
			}
			if err := s.importChildren(folder, res.ID, childrenByParent); err != nil {
				return err
			}
		case insomniaTypeRequest:
			req, err := s.importRequest(res)
			if err != nil {
				return err
			}
			if err := parent.Add(res.ID, req); err != nil {
				return &ImportError{Format: FormatInsomnia, Message: "conflicting request identifier", Cause: err}
			}
		}
	}
	return nil
}

func (s *insomniaImport) importRequest(res InsomniaResource) (*collection.Request, error) {
	req, err := collection.NewRequest(res.Name, strings.ToUpper(res.Method), s.rewrite(res.URL))
	if err != nil {
		return nil, &ImportError{Format: FormatInsomnia, Message: "invalid request " + res.ID, Cause: err}
	}

	for _, pair := range res.Parameters {
		if pair.Disabled {
			continue
		}
		if err := req.SetQuery(pair.Name, s.rewrite(pair.Value)); err != nil {
			return nil, &ImportError{Format: FormatInsomnia, Message: "invalid request " + res.ID, Cause: err}
		}
	}
	for _, pair := range res.Headers {
		if pair.Disabled {
			continue
		}
		if err := req.SetHeader(pair.Name, s.rewrite(pair.Value)); err != nil {
			return nil, &ImportError{Format: FormatInsomnia, Message: "invalid request " + res.ID, Cause: err}
		}
	}

	req.Auth = s.importAuth(res)
	req.Body, err = s.importBody(res)
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (s *insomniaImport) importAuth(res InsomniaResource) collection.Authentication {
	auth := res.Authentication
	if auth.Disabled {
		return collection.NoAuth()
	}
	switch auth.Type {
	case "", "none":
		return collection.NoAuth()
	case "basic":
		return collection.BasicAuth(s.rewrite(auth.Username), s.rewrite(auth.Password))
	case "bearer":
		return collection.BearerAuth(s.rewrite(auth.Token))
	default:
		s.logger().Warn("unsupported authentication scheme",
			"request", res.ID, "scheme", auth.Type)
		return collection.UnsupportedAuth(auth.Type)
	}
}

func (s *insomniaImport) importBody(res InsomniaResource) (collection.Body, error) {
	body := res.Body
	mime := body.MimeType
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	switch {
	case mime == "":
		return collection.NoBody(), nil

	case mime == "application/json" || strings.HasSuffix(mime, "+json"):
		text := s.rewrite(body.Text)
		// Only template-free JSON parses structurally; bodies with
		// embedded expressions stay raw so the expressions survive.
		if parsed, err := oj.Parse([]byte(text)); err == nil {
			return collection.JSONBody(parsed), nil
		}
		return collection.RawBody(text), nil

	case mime == "application/x-www-form-urlencoded":
		form := collection.NewOrderedMap[string]()
		for _, param := range body.Params {
			if param.Disabled {
				continue
			}
			form.Set(param.Name, s.rewrite(param.Value))
		}
		return collection.FormBody(form), nil

	case mime == "multipart/form-data":
		return s.importMultipartBody(res)

	default:
		return collection.RawBody(s.rewrite(body.Text)), nil
	}
}

// importMultipartBody converts a multipart form. File fields become
// file-backed chains so the attachment is read lazily at send time, with
// the form value holding a chain reference.
func (s *insomniaImport) importMultipartBody(res InsomniaResource) (collection.Body, error) {
	form := collection.NewOrderedMap[string]()
	for _, param := range res.Body.Params {
		if param.Disabled {
			continue
		}
		if param.Type == "file" {
			chainID := collection.ChainID("file_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
			chain := &collection.Chain{
				ID:     chainID,
				Source: collection.FileSource(param.FileName),
			}
			if err := s.out.AddChain(chain); err != nil {
				return collection.Body{}, &ImportError{Format: FormatInsomnia, Message: "conflicting chain identifier", Cause: err}
			}
			form.Set(param.Name, "{% chain '"+string(chainID)+"' %}")
			continue
		}
		form.Set(param.Name, s.rewrite(param.Value))
	}
	return collection.MultipartBody(form), nil
}

// rewrite converts an Insomnia template string into the canonical
// template language: {{ _.var }} variable references lose their "_."
// environment prefix, while {% %} tags are kept byte-identical. If the
// result does not parse, the input is kept verbatim so nothing is lost.
func (s *insomniaImport) rewrite(source string) string {
	if !strings.Contains(source, "{{") && !strings.Contains(source, "{%") {
		return source
	}

	var b strings.Builder
	rest := source
	for {
		braces := strings.Index(rest, "{{")
		tag := strings.Index(rest, "{%")

		next, kind := -1, ""
		if braces >= 0 {
			next, kind = braces, "}}"
		}
		if tag >= 0 && (next < 0 || tag < next) {
			next, kind = tag, "%}"
		}
		if next < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:next])
		rest = rest[next:]

		end := strings.Index(rest, kind)
		if end < 0 {
			// Unterminated; keep the remainder as-is.
			b.WriteString(rest)
			break
		}
		chunk := rest[:end+2]
		if kind == "}}" {
			b.WriteString(rewriteVariableRef(chunk))
		} else {
			b.WriteString(chunk)
		}
		rest = rest[end+2:]
	}

	rewritten := b.String()
	if _, err := template.Parse(rewritten); err != nil {
		s.logger().Warn("keeping unparseable template verbatim",
			"source", util.Truncate(source, 0), "error", err)
		return source
	}

	s.registerResponseChains(rewritten)
	return rewritten
}

// rewriteVariableRef normalizes one {{ ... }} chunk: surrounding space is
// dropped and the Insomnia "_." environment prefix is stripped.
func rewriteVariableRef(chunk string) string {
	inner := strings.TrimSpace(chunk[2 : len(chunk)-2])
	inner = strings.TrimPrefix(inner, "_.")
	return "{{" + inner + "}}"
}

// registerResponseChains scans a rewritten template for response tags and
// registers a response-backed chain for each referenced request, so the
// chain table accounts for every upstream dependency.
func (s *insomniaImport) registerResponseChains(source string) {
	tmpl, err := template.Parse(source)
	if err != nil {
		return
	}
	for _, expr := range tmpl.Expressions() {
		call, ok := expr.(*template.FunctionCall)
		if !ok || call.Name != "response" || len(call.Args) < 2 {
			continue
		}
		requestID := call.Args[1].Value
		if requestID == "" {
			continue
		}
		if _, exists := s.out.Chain(collection.ChainID(requestID)); exists {
			continue
		}
		chain := &collection.Chain{
			ID:     collection.ChainID(requestID),
			Source: collection.ResponseSource(requestID),
		}
		// Duplicate registration can only race against ourselves within a
		// single import; the existence check above makes Add infallible.
		if err := s.out.AddChain(chain); err != nil {
			s.logger().Warn("duplicate response chain", "chain", requestID)
		}
	}
}

// stringifyEnvValue renders an environment value as a template string.
// Strings pass through; everything else is serialized as JSON.
func stringifyEnvValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return oj.JSON(v)
	}
}
