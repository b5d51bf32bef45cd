package models

// ListFilesRequest represents a request to list the CSV files in a directory.
type ListFilesRequest struct {
	// Path is the directory to list, absolute or relative to the server's working directory.
	Path string
}
