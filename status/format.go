package status

// Format resets every data sector to empty and stamps the signature,
// persisting the whole region with an erase and a write. It is invoked
// automatically when the signature does not verify at startup, which covers
// both virgin media and a corrupted status sector.
func (t *Table) Format() error {
	statuses := make([]Status, t.Sectors())
	for i := range statuses {
		statuses[i] = Empty
	}
	return t.ReplaceAll(statuses)
}
