package watcher

// Ignored exposes the ignore check for tests.
func (w *Watcher) Ignored(root string, ignore []string, path string) bool {
	w.root = root
	w.ignore = ignore
	return w.ignored(path)
}
