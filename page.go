package pjax

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/partial-coffee/go-pjax/connector"
)

var (
	// templateCache is the cache for parsed template sets
	templateCache = sync.Map{}
	// mutexCache is a cache of mutexes for each template key
	mutexCache = sync.Map{}
	// titlePolicy strips markup from captured title blocks before they are
	// wrapped in a <title> element
	titlePolicy = bluemonday.StrictPolicy()

	tracer = otel.Tracer("github.com/partial-coffee/go-pjax")

	// protectedFunctionNames is a set of function names that are protected from being overridden
	protectedFunctionNames = map[string]struct{}{
		"context":       {},
		"url":           {},
		"urlIs":         {},
		"urlStarts":     {},
		"urlContains":   {},
		"pjax":          {},
		"pjaxHeader":    {},
		"pjaxContainer": {},
		"pjaxVersion":   {},
		"pjaxify":       {},
		"locale":        {},
	}
)

var (
	// ErrNoTemplates is returned when a page is rendered without any
	// template files.
	ErrNoTemplates = errors.New("no templates provided for rendering")

	// ErrAmbiguousTitle is returned when both a title variable and a title
	// block are configured on the same page.
	ErrAmbiguousTitle = errors.New("only one of title variable and title block may be set")
)

type (
	// Page represents one renderable view: the template files that make it
	// up, the data they see, and how the view answers partial-page
	// navigation requests.
	Page struct {
		parent            *Page
		request           *http.Request
		fs                fs.FS
		logger            Logger
		connector         connector.Connector
		useCache          bool
		templates         []string
		pjaxTemplates     []string
		pjaxifyNames      bool
		suffix            string
		block             string
		titleBlock        string
		titleVar          string
		parentVar         string
		parentName        string
		pjaxParentName    string
		useFragment       bool
		fragment          string
		combinedFunctions template.FuncMap
		data              map[string]any
		globalData        map[string]any
		layoutData        map[string]any
		responseHeaders   map[string]string
		mu                sync.RWMutex
	}

	// Data is what templates receive as their dot.
	Data struct {
		// Ctx is the context of the request
		Ctx context.Context
		// URL is the URL of the request
		URL *url.URL
		// Request contains the http.Request
		Request *http.Request
		// IsPJAX reports whether this render answers a partial request
		IsPJAX bool
		// Data contains the data specific to this page
		Data map[string]any
		// Global contains service-wide data available to all pages
		Global map[string]any
		// Layout contains data shared by the pages of one layout
		Layout map[string]any
	}
)

// New creates a new page over the given template files. The first file is
// the one executed; the rest usually hold the blocks it fills in.
func New(templates ...string) *Page {
	return &Page{
		templates:         templates,
		combinedFunctions: copyFuncMap(),
		data:              make(map[string]any),
		layoutData:        make(map[string]any),
		globalData:        make(map[string]any),
		fs:                os.DirFS("./"),
	}
}

// Templates sets the template files for the page.
func (p *Page) Templates(templates ...string) *Page {
	p.templates = templates
	return p
}

// AddTemplate adds a template file to the page.
func (p *Page) AddTemplate(template string) *Page {
	p.templates = append(p.templates, template)
	return p
}

// Reset drops all data and partial-request configuration from the page.
func (p *Page) Reset() *Page {
	p.data = make(map[string]any)
	p.layoutData = make(map[string]any)
	p.globalData = make(map[string]any)
	p.pjaxTemplates = nil
	p.pjaxifyNames = false
	p.block = ""
	p.titleBlock = ""
	p.titleVar = ""
	p.parentVar = ""
	p.useFragment = false
	p.fragment = ""

	return p
}

// Block makes the page answer partial requests with only the named block's
// output instead of the full page.
func (p *Page) Block(name string) *Page {
	p.block = name
	return p
}

// TitleBlock prefixes partial block responses with a <title> element
// captured from the named block.
func (p *Page) TitleBlock(name string) *Page {
	p.titleBlock = name
	return p
}

// TitleVar prefixes partial block responses with a <title> element taken
// from the named data key.
func (p *Page) TitleVar(key string) *Page {
	p.titleVar = key
	return p
}

// PJAXTemplates sets the alternate template files used for partial requests.
func (p *Page) PJAXTemplates(templates ...string) *Page {
	p.pjaxTemplates = templates
	return p
}

// Pjaxify makes the page answer partial requests by deriving alternate
// template names: "list.html" is rendered from "list-pjax.html".
func (p *Page) Pjaxify() *Page {
	p.pjaxifyNames = true
	return p
}

// Suffix overrides the suffix used by Pjaxify for this page.
func (p *Page) Suffix(suffix string) *Page {
	p.suffix = suffix
	return p
}

// Extend sets the data key contextVar to pjaxParent on partial requests and
// to parent otherwise, before every render. Templates use it to decide which
// wrapper to fill. Empty arguments keep the conventional defaults
// ("base.html", "pjax.html", "parent").
func (p *Page) Extend(parent, pjaxParent, contextVar string) *Page {
	if parent == "" {
		parent = "base.html"
	}
	if pjaxParent == "" {
		pjaxParent = "pjax.html"
	}
	if contextVar == "" {
		contextVar = "parent"
	}

	p.parentVar = contextVar
	p.parentName = parent
	p.pjaxParentName = pjaxParent

	return p
}

// Fragment makes the page answer partial requests by rendering the full page
// and extracting the element with the given id. An empty container means the
// one the client asked for in its container header.
func (p *Page) Fragment(container string) *Page {
	p.useFragment = true
	p.fragment = container
	return p
}

// SetData sets the data for the page.
func (p *Page) SetData(data map[string]any) *Page {
	p.data = data
	return p
}

// AddData adds data to the page.
func (p *Page) AddData(key string, value any) *Page {
	p.data[key] = value
	return p
}

// MergeData merges the data into the page.
func (p *Page) MergeData(data map[string]any, override bool) *Page {
	for k, v := range data {
		if _, ok := p.data[k]; ok && !override {
			continue
		}

		p.data[k] = v
	}
	return p
}

func (p *Page) SetResponseHeaders(headers map[string]string) *Page {
	p.responseHeaders = headers
	return p
}

func (p *Page) GetResponseHeaders() map[string]string {
	if p == nil {
		return nil
	}

	if p.responseHeaders == nil && p.parent != nil {
		return p.parent.GetResponseHeaders()
	}

	return p.responseHeaders
}

// SetConnector sets the connector for the page.
func (p *Page) SetConnector(conn connector.Connector) *Page {
	p.connector = conn
	return p
}

// AddFunc adds a function to the page.
func (p *Page) AddFunc(name string, fn interface{}) *Page {
	if _, ok := protectedFunctionNames[name]; ok {
		p.getLogger().Warn("function name is protected and cannot be overwritten", "function", name)
		return p
	}

	p.mu.Lock()
	p.combinedFunctions[name] = fn
	p.mu.Unlock()

	return p
}

// MergeFuncMap merges the given FuncMap with the existing FuncMap in the Page.
func (p *Page) MergeFuncMap(funcMap template.FuncMap) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range funcMap {
		if _, ok := protectedFunctionNames[k]; ok {
			p.getLogger().Warn("function name is protected and cannot be overwritten", "function", k)
			continue
		}

		p.combinedFunctions[k] = v
	}
}

// SetLogger sets the logger for the page.
func (p *Page) SetLogger(logger Logger) *Page {
	p.logger = logger
	return p
}

// SetFileSystem sets the file system the templates are read from.
func (p *Page) SetFileSystem(fsys fs.FS) *Page {
	p.fs = fsys
	return p
}

// UseCache sets the parsed-template cache usage flag for the page.
func (p *Page) UseCache(useCache bool) *Page {
	p.useCache = useCache
	return p
}

// SetGlobalData sets the service-wide data for the page.
func (p *Page) SetGlobalData(data map[string]any) *Page {
	p.globalData = data
	return p
}

// SetLayoutData sets the layout-wide data for the page.
func (p *Page) SetLayoutData(data map[string]any) *Page {
	p.layoutData = data
	return p
}

// SetParent sets the parent of the page.
func (p *Page) SetParent(parent *Page) *Page {
	p.parent = parent
	return p
}

// RenderWithRequest renders the page for the given http.Request, answering
// partial requests with only the configured fragment.
func (p *Page) RenderWithRequest(ctx context.Context, r *http.Request) (template.HTML, error) {
	if p == nil {
		return "", errors.New("page is not initialized")
	}

	p.request = r
	if p.connector == nil {
		p.connector = connector.NewPJAX(nil)
	}

	return p.render(ctx, r, p.connector.IsPartial(r))
}

// WriteWithRequest writes the page to the http.ResponseWriter.
func (p *Page) WriteWithRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if p == nil {
		_, err := fmt.Fprintf(w, "page is not initialized")
		return err
	}

	out, err := p.RenderWithRequest(ctx, r)
	if err != nil {
		p.getLogger().Error("error rendering page", "error", err)
		return err
	}

	if p.getConnector().IsPartial(r) {
		p.getConnector().WriteResponseHeaders(w, r)
	}

	for k, v := range p.GetResponseHeaders() {
		w.Header().Set(k, v)
	}

	_, err = w.Write([]byte(out))
	if err != nil {
		p.getLogger().Error("error writing page to response", "error", err)
		return err
	}

	return nil
}

// Render renders the full page without requiring an http.Request.
func (p *Page) Render(ctx context.Context) (template.HTML, error) {
	if p == nil {
		return "", errors.New("page is not initialized")
	}

	return p.renderSelf(ctx, nil, p.templates, false)
}

func (p *Page) render(ctx context.Context, r *http.Request, isPartial bool) (template.HTML, error) {
	if !isPartial {
		return p.renderSelf(ctx, r, p.templates, false)
	}

	switch {
	case p.block != "":
		return p.renderBlock(ctx, r)
	case p.useFragment:
		return p.renderFragment(ctx, r)
	case len(p.pjaxTemplates) > 0:
		return p.renderSelf(ctx, r, p.pjaxTemplates, true)
	case p.pjaxifyNames:
		return p.renderSelf(ctx, r, PjaxifyAll(p.templates, p.suffix), true)
	default:
		return p.renderSelf(ctx, r, p.templates, true)
	}
}

// renderBlock renders the full template set but returns only the target
// block's output, optionally prefixed by a <title> line.
func (p *Page) renderBlock(ctx context.Context, r *http.Request) (template.HTML, error) {
	if p.titleBlock != "" && p.titleVar != "" {
		return "", ErrAmbiguousTitle
	}

	if len(p.templates) == 0 {
		p.getLogger().Error("no templates provided for rendering")
		return "", ErrNoTemplates
	}

	ctx, span := tracer.Start(ctx, "pjax.render.block",
		trace.WithAttributes(
			attribute.String("pjax.template", p.templates[0]),
			attribute.String("pjax.block", p.block),
		))
	defer span.End()

	data := p.buildData(ctx, r, true)

	functions := p.getFuncs(data)
	funcMapPtr := reflect.ValueOf(functions).Pointer()

	cacheKey := p.generateCacheKey(p.templates, funcMapPtr)
	tmpl, err := p.getOrParseTemplate(cacheKey, p.templates, functions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "template parsing failed")
		p.getLogger().Error("error getting or parsing template", "error", err)
		return "", err
	}

	refs := referencedBlocks(tmpl)
	if tmpl.Lookup(p.block) == nil || !refs[p.block] {
		err = fmt.Errorf("pjax block %q does not exist or was not rendered", p.block)
		span.RecordError(err)
		span.SetStatus(codes.Error, "block not found")
		return "", err
	}

	var buf bytes.Buffer
	if err = tmpl.ExecuteTemplate(&buf, p.block, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block execution failed")
		p.getLogger().Error("error executing block", "block", p.block, "error", err)
		return "", fmt.Errorf("error executing block %q: %w", p.block, err)
	}

	title, err := p.renderTitle(tmpl, refs, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "title rendering failed")
		return "", err
	}

	return template.HTML(title + buf.String()), nil
}

// renderTitle produces the "<title>...</title>\n" prefix for block
// responses, or "" when no title source is configured.
func (p *Page) renderTitle(tmpl *template.Template, refs map[string]bool, data *Data) (string, error) {
	var title string

	switch {
	case p.titleBlock != "":
		if tmpl.Lookup(p.titleBlock) == nil || !refs[p.titleBlock] {
			return "", fmt.Errorf("pjax title block %q does not exist or was not rendered", p.titleBlock)
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, p.titleBlock, data); err != nil {
			return "", fmt.Errorf("error executing title block %q: %w", p.titleBlock, err)
		}

		title = strings.TrimSpace(titlePolicy.Sanitize(buf.String()))
	case p.titleVar != "":
		v, ok := p.data[p.titleVar]
		if !ok {
			return "", fmt.Errorf("pjax title variable %q not found in data", p.titleVar)
		}

		title = template.HTMLEscapeString(fmt.Sprint(v))
	}

	if title == "" {
		return "", nil
	}

	return "<title>" + title + "</title>\n", nil
}

// renderFragment renders the full page and extracts the requested container
// from the parsed output.
func (p *Page) renderFragment(ctx context.Context, r *http.Request) (template.HTML, error) {
	full, err := p.renderSelf(ctx, r, p.templates, true)
	if err != nil {
		return "", err
	}

	container := p.fragment
	if container == "" {
		container = p.getConnector().ContainerValue(r)
	}

	return ExtractFragment(full, container)
}

func (p *Page) renderSelf(ctx context.Context, r *http.Request, templates []string, isPartial bool) (template.HTML, error) {
	if len(templates) == 0 {
		p.getLogger().Error("no templates provided for rendering")
		return "", ErrNoTemplates
	}

	ctx, span := tracer.Start(ctx, "pjax.render",
		trace.WithAttributes(
			attribute.String("pjax.template", templates[0]),
			attribute.Bool("pjax.partial", isPartial),
		))
	defer span.End()

	data := p.buildData(ctx, r, isPartial)

	functions := p.getFuncs(data)
	funcMapPtr := reflect.ValueOf(functions).Pointer()

	cacheKey := p.generateCacheKey(templates, funcMapPtr)
	tmpl, err := p.getOrParseTemplate(cacheKey, templates, functions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "template parsing failed")
		p.getLogger().Error("error getting or parsing template", "error", err)
		return "", err
	}

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "template execution failed")
		p.getLogger().Error("error executing template", "template", templates[0], "error", err)
		return "", fmt.Errorf("error executing template '%s': %w", templates[0], err)
	}

	return template.HTML(buf.String()), nil
}

func (p *Page) buildData(ctx context.Context, r *http.Request, isPartial bool) *Data {
	var currentURL *url.URL
	if r != nil {
		currentURL = r.URL
	}

	if p.parentVar != "" {
		parent := p.parentName
		if isPartial {
			parent = p.pjaxParentName
		}
		p.data[p.parentVar] = parent
	}

	return &Data{
		Ctx:     ctx,
		URL:     currentURL,
		Request: r,
		IsPJAX:  isPartial,
		Data:    p.data,
		Global:  p.getGlobalData(),
		Layout:  p.getLayoutData(),
	}
}

func (p *Page) mergeFuncMapInternal(funcMap template.FuncMap) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range funcMap {
		p.combinedFunctions[k] = v
	}
}

// getFuncMap returns the combined function map of the page.
func (p *Page) getFuncMap() template.FuncMap {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.parent != nil {
		for k, v := range p.parent.getFuncMap() {
			p.combinedFunctions[k] = v
		}
	}

	return p.combinedFunctions
}

func (p *Page) getFuncs(data *Data) template.FuncMap {
	funcs := p.getFuncMap()

	funcs["context"] = func() context.Context {
		return data.Ctx
	}

	funcs["url"] = func() *url.URL {
		return data.URL
	}

	funcs["urlIs"] = func(current string) bool {
		if data.URL == nil {
			return false
		}
		return strings.Trim(data.URL.Path, "/") == strings.Trim(current, "/")
	}

	funcs["urlStarts"] = func(current string) bool {
		if data.URL == nil {
			return false
		}
		return strings.HasPrefix(data.URL.Path, current)
	}

	funcs["urlContains"] = func(current string) bool {
		if data.URL == nil {
			return false
		}
		return strings.Contains(data.URL.Path, current)
	}

	funcs["pjax"] = func() bool {
		return data.IsPJAX
	}

	funcs["pjaxHeader"] = func() string {
		return p.getConnector().RequestHeader()
	}

	funcs["pjaxContainer"] = func() string {
		return p.getConnector().ContainerValue(p.GetRequest())
	}

	funcs["pjaxVersion"] = func() string {
		return getVersioner(data.Ctx).Version(data.Ctx)
	}

	funcs["pjaxify"] = func(name string) string {
		return Pjaxify(name, p.suffix)
	}

	funcs["locale"] = func() string {
		return getLocalizer(data.Ctx).Locale().String()
	}

	return funcs
}

func (p *Page) getGlobalData() map[string]any {
	if p.parent != nil {
		globalData := p.parent.getGlobalData()
		for k, v := range p.globalData {
			globalData[k] = v
		}
		return globalData
	}
	return p.globalData
}

func (p *Page) getLayoutData() map[string]any {
	if p.parent != nil {
		layoutData := p.parent.getLayoutData()
		for k, v := range p.layoutData {
			layoutData[k] = v
		}
		return layoutData
	}
	return p.layoutData
}

func (p *Page) getConnector() connector.Connector {
	if p.connector != nil {
		return p.connector
	}
	if p.parent != nil {
		return p.parent.getConnector()
	}
	return connector.NewPJAX(nil)
}

func (p *Page) GetRequest() *http.Request {
	if p.request != nil {
		return p.request
	}
	if p.parent != nil {
		return p.parent.GetRequest()
	}
	return &http.Request{}
}

func (p *Page) getFS() fs.FS {
	if p == nil {
		return os.DirFS("./")
	}

	if p.fs != nil {
		return p.fs
	}
	if p.parent != nil {
		return p.parent.getFS()
	}
	return os.DirFS("./")
}

func (p *Page) getLogger() Logger {
	if p == nil {
		return slog.Default().WithGroup("pjax")
	}

	if p.logger != nil {
		return p.logger
	}

	if p.parent != nil {
		return p.parent.getLogger()
	}

	// Cache the default logger in p.logger
	p.logger = slog.Default().WithGroup("pjax")

	return p.logger
}

func (p *Page) getOrParseTemplate(cacheKey string, templates []string, functions template.FuncMap) (*template.Template, error) {
	if tmpl, cached := templateCache.Load(cacheKey); cached && p.useCache {
		if t, ok := tmpl.(*template.Template); ok {
			return t, nil
		}
	}

	muInterface, _ := mutexCache.LoadOrStore(cacheKey, &sync.Mutex{})
	mu := muInterface.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring lock
	if tmpl, cached := templateCache.Load(cacheKey); cached && p.useCache {
		if t, ok := tmpl.(*template.Template); ok {
			return t, nil
		}
	}

	t := template.New(path.Base(templates[0])).Funcs(functions)
	tmpl, err := t.ParseFS(p.getFS(), templates...)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	if p.useCache {
		templateCache.Store(cacheKey, tmpl)
	}

	return tmpl, nil
}

// wrappedBy returns a copy of p whose template set is prefixed with the
// wrapper's templates, making the wrapper's root template the one executed.
func (p *Page) wrappedBy(wrapper *Page) *Page {
	clone := p.clone()
	clone.templates = append(append([]string{}, wrapper.templates...), p.templates...)
	clone.parent = wrapper

	for k, v := range wrapper.data {
		if _, ok := clone.data[k]; !ok {
			clone.data[k] = v
		}
	}

	return clone
}

func (p *Page) clone() *Page {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clone := &Page{
		parent:            p.parent,
		request:           p.request,
		fs:                p.fs,
		logger:            p.logger,
		connector:         p.connector,
		useCache:          p.useCache,
		pjaxifyNames:      p.pjaxifyNames,
		suffix:            p.suffix,
		block:             p.block,
		titleBlock:        p.titleBlock,
		titleVar:          p.titleVar,
		parentVar:         p.parentVar,
		parentName:        p.parentName,
		pjaxParentName:    p.pjaxParentName,
		useFragment:       p.useFragment,
		fragment:          p.fragment,
		templates:         append([]string{}, p.templates...),
		pjaxTemplates:     append([]string{}, p.pjaxTemplates...),
		combinedFunctions: make(template.FuncMap),
		data:              make(map[string]any),
		layoutData:        make(map[string]any),
		globalData:        make(map[string]any),
	}

	for k, v := range p.combinedFunctions {
		clone.combinedFunctions[k] = v
	}

	for k, v := range p.data {
		clone.data[k] = v
	}

	for k, v := range p.layoutData {
		clone.layoutData[k] = v
	}

	for k, v := range p.globalData {
		clone.globalData[k] = v
	}

	return clone
}

// generateCacheKey includes all template names plus the function map pointer
func (p *Page) generateCacheKey(templates []string, funcMapPtr uintptr) string {
	var builder strings.Builder

	for _, tmpl := range templates {
		builder.WriteString(tmpl)
		builder.WriteString(";")
	}

	builder.WriteString(fmt.Sprintf("funcMap:%x", funcMapPtr))

	return builder.String()
}
