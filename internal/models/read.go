package models

// FileContentRequest represents a request to read a text file.
type FileContentRequest struct {
	// Path is the directory containing the file.
	Path string
	// Filename is joined onto Path to form the full file path.
	Filename string
}

// FileContent is a fully decoded text file.
type FileContent struct {
	// Text is the decoded content with line endings normalized to \n.
	Text string
	// Encoding is the name of the decoder that accepted the file.
	Encoding string
	// Size is the size of the file on disk in bytes.
	Size int64
}
