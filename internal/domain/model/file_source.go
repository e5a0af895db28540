package model

import (
	"strings"

	"telegram-file-relay/internal/domain"
)

// FileSource is a relayable file bound to a bot command. Built once at startup.
type FileSource struct {
	Command     string
	URL         string
	FileName    string
	Description string
}

func (s FileSource) Configured() bool { return strings.TrimSpace(s.URL) != "" }

// NewFileSource validates and constructs a source.
func NewFileSource(command, url, fileName, description string) (FileSource, error) {
	if strings.TrimSpace(command) == "" || strings.TrimSpace(fileName) == "" {
		return FileSource{}, domain.ErrInvalidArgument
	}
	if description == "" {
		description = fileName
	}
	return FileSource{
		Command:     command,
		URL:         strings.TrimSpace(url),
		FileName:    fileName,
		Description: description,
	}, nil
}
