package pjax

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/partial-coffee/go-pjax/connector"
)

type (
	Logger interface {
		Warn(msg string, args ...any)
		Error(msg string, args ...any)
	}

	Config struct {
		Connector connector.Connector
		UseCache  bool
		FuncMap   template.FuncMap
		Logger    Logger
		FS        fs.FS
		// Suffix is the template-name suffix used by pages in Pjaxify mode.
		Suffix string
	}

	Service struct {
		config            *Config
		data              map[string]any
		combinedFunctions template.FuncMap
		connector         connector.Connector
		funcMapLock       sync.RWMutex
	}

	Layout struct {
		service           *Service
		filesystem        fs.FS
		content           *Page
		wrapper           *Page
		pjaxWrapper       *Page
		data              map[string]any
		request           *http.Request
		combinedFunctions template.FuncMap
		connector         connector.Connector
		funcMapLock       sync.RWMutex
	}
)

// NewService returns a new pjax rendering service.
func NewService(cfg *Config) *Service {
	if cfg.FuncMap == nil {
		cfg.FuncMap = DefaultTemplateFuncMap
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default().WithGroup("pjax")
	}

	if cfg.Connector == nil {
		cfg.Connector = connector.NewPJAX(nil)
	}

	return &Service{
		config:            cfg,
		data:              make(map[string]any),
		funcMapLock:       sync.RWMutex{},
		combinedFunctions: cfg.FuncMap,
		connector:         cfg.Connector,
	}
}

// NewLayout returns a new layout.
func (svc *Service) NewLayout() *Layout {
	return &Layout{
		service:           svc,
		data:              make(map[string]any),
		filesystem:        svc.config.FS,
		connector:         svc.connector,
		combinedFunctions: svc.getFuncMap(),
	}
}

// SetData sets the service-wide data.
func (svc *Service) SetData(data map[string]any) *Service {
	svc.data = data
	return svc
}

// AddData adds service-wide data.
func (svc *Service) AddData(key string, value any) *Service {
	svc.data[key] = value
	return svc
}

func (svc *Service) SetConnector(conn connector.Connector) *Service {
	svc.connector = conn
	return svc
}

func (svc *Service) Connector() connector.Connector {
	return svc.connector
}

// MergeFuncMap merges the given FuncMap with the existing FuncMap.
func (svc *Service) MergeFuncMap(funcMap template.FuncMap) {
	svc.funcMapLock.Lock()
	defer svc.funcMapLock.Unlock()

	for k, v := range funcMap {
		if _, ok := protectedFunctionNames[k]; ok {
			svc.config.Logger.Warn("function name is protected and cannot be overwritten", "function", k)
			continue
		}
		svc.combinedFunctions[k] = v
	}
}

func (svc *Service) getFuncMap() template.FuncMap {
	svc.funcMapLock.RLock()
	defer svc.funcMapLock.RUnlock()
	return svc.combinedFunctions
}

// FS sets the filesystem for the Layout.
func (l *Layout) FS(fsys fs.FS) *Layout {
	l.filesystem = fsys
	return l
}

func (l *Layout) Connector() connector.Connector {
	return l.connector
}

// Set sets the content page for the layout.
func (l *Layout) Set(p *Page) *Layout {
	l.content = p
	return l
}

// Wrap sets the wrapper page full requests render through.
func (l *Layout) Wrap(p *Page) *Layout {
	l.wrapper = p
	return l
}

// PJAXWrap sets the minimal wrapper page partial requests render through.
// Without one, partial requests render the content page on its own.
func (l *Layout) PJAXWrap(p *Page) *Layout {
	l.pjaxWrapper = p
	return l
}

// SetData sets the data for the layout.
func (l *Layout) SetData(data map[string]any) *Layout {
	l.data = data
	return l
}

// AddData adds data to the layout.
func (l *Layout) AddData(key string, value any) *Layout {
	l.data[key] = value
	return l
}

// MergeFuncMap merges the given FuncMap with the existing FuncMap in the Layout.
func (l *Layout) MergeFuncMap(funcMap template.FuncMap) {
	l.funcMapLock.Lock()
	defer l.funcMapLock.Unlock()

	for k, v := range funcMap {
		if _, ok := protectedFunctionNames[k]; ok {
			l.service.config.Logger.Warn("function name is protected and cannot be overwritten", "function", k)
			continue
		}
		l.combinedFunctions[k] = v
	}
}

func (l *Layout) getFuncMap() template.FuncMap {
	l.funcMapLock.RLock()
	defer l.funcMapLock.RUnlock()

	return l.combinedFunctions
}

// RenderWithRequest renders the layout for the given http.Request. Partial
// requests go through the pjax wrapper, or through the bare content page;
// full requests go through the wrapper.
func (l *Layout) RenderWithRequest(ctx context.Context, r *http.Request) (template.HTML, error) {
	l.request = r

	page := l.compose(r)
	return page.RenderWithRequest(ctx, r)
}

// WriteWithRequest writes the layout to the response writer.
func (l *Layout) WriteWithRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	l.request = r

	page := l.compose(r)
	err := page.WriteWithRequest(ctx, w, r)
	if err != nil {
		if l.service.config.Logger != nil {
			l.service.config.Logger.Error("error rendering layout", "error", err)
		}
		return err
	}

	return nil
}

func (l *Layout) compose(r *http.Request) *Page {
	isPartial := l.connector != nil && l.connector.IsPartial(r)
	page := l.content

	switch {
	case isPartial && l.pjaxWrapper != nil:
		page = l.content.wrappedBy(l.pjaxWrapper)
	case isPartial && l.content.block != "" && l.wrapper != nil:
		// Block capture renders the full set; the block reference lives in
		// the wrapper's templates.
		page = l.content.wrappedBy(l.wrapper)
	case !isPartial && l.wrapper != nil:
		page = l.content.wrappedBy(l.wrapper)
	}

	l.applyConfigToPage(page)
	return page
}

func (l *Layout) applyConfigToPage(p *Page) {
	if p == nil {
		return
	}

	p.mergeFuncMapInternal(l.getFuncMap())

	p.connector = l.connector
	if l.filesystem != nil {
		p.fs = l.filesystem
	}
	if l.service.config.Logger != nil {
		p.logger = l.service.config.Logger
	}
	if p.suffix == "" {
		p.suffix = l.service.config.Suffix
	}
	p.useCache = l.service.config.UseCache
	p.globalData = l.service.data
	p.layoutData = l.data
	p.request = l.request
}
