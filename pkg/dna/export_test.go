package dna

// SetWriterVersion makes w emit an older container version.
func SetWriterVersion(w *Writer, v Version) {
	w.version = v
}
