package mission

import "sync"

// Context holds the document of the running session. The frame loop swaps it;
// loggers and command handlers on other goroutines read it.
type Context struct {
	mu       sync.RWMutex
	Document *Document
	Path     string
}

// NewContext creates a Context with no document loaded.
func NewContext() *Context {
	return &Context{}
}

// GetDocument returns the current document, nil when the editor is closed.
func (mc *Context) GetDocument() *Document {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Document
}

// GetPath returns the storage name the document was loaded from or saved to.
func (mc *Context) GetPath() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Path
}

// MissionName returns the current mission name for log context.
func (mc *Context) MissionName() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if mc.Document == nil {
		return "No mission loaded"
	}
	return mc.Document.Info.Name
}

// SetDocument replaces the current document and its storage name.
func (mc *Context) SetDocument(doc *Document, path string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Document = doc
	mc.Path = path
}

// SetPath records the storage name after a save.
func (mc *Context) SetPath(path string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Path = path
}
