package logger

import "sync"

// components maps a component name (workspace, dag, scheduler, ...) to the
// logger it writes through. Entries are rebuilt after Init so they follow
// the configured level and format.
var components struct {
	sync.RWMutex
	byName map[string]*Logger
}

// Register sets the logger used by component name.
func Register(name string, l *Logger) {
	components.Lock()
	defer components.Unlock()
	if components.byName == nil {
		components.byName = make(map[string]*Logger)
	}
	components.byName[name] = l
}

// Get returns the logger of component name, falling back to the global
// logger tagged with name.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.byName[name]
	components.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults derives a component logger per name from the current
// global logger. Call it after Init.
func RegisterDefaults(names ...string) {
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global.WithComponent(name))
	}
}

// Reset forgets every registered component logger.
func Reset() {
	components.Lock()
	defer components.Unlock()
	components.byName = nil
}
