package partition

// Keyspace:
// - ps/{map}-{district}-{language}/{sender}   one row per entry
// - pm/{map}-{district}-{language}            partition marker, written with every batch

var (
	sep          = byte('/')
	rowPrefix    = []byte("ps/")
	markerPrefix = []byte("pm/")
)

func rowKey(k Key, sender string) []byte {
	// ps/{partition}/{sender}
	id := k.String()
	b := make([]byte, 0, len(rowPrefix)+len(id)+1+len(sender))
	b = append(b, rowPrefix...)
	b = append(b, id...)
	b = append(b, sep)
	b = append(b, sender...)
	return b
}

func markerKey(k Key) []byte {
	// pm/{partition}
	id := k.String()
	b := make([]byte, 0, len(markerPrefix)+len(id))
	b = append(b, markerPrefix...)
	b = append(b, id...)
	return b
}
