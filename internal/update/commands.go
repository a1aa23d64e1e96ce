package update

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Rorical/RoriKB/internal/eventbus"
)

const HelpText = "Commands: /upload <file.csv>, /reset, /reload, /clear, /help"

// ParseCommand turns a slash command into the event for core. A non-empty
// status is shown in the status bar; an unknown command yields no event.
func ParseCommand(line string) (eventbus.UIEvent, string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ""
	}
	name, args := fields[0], strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch name {
	case "/upload":
		if args == "" {
			return nil, "Usage: /upload <file.csv>"
		}
		path := expandHome(unquote(args))
		return eventbus.UploadCSVEvent{Path: path}, "Uploading " + filepath.Base(path)
	case "/reset", "/delete":
		return eventbus.DeleteCSVEvent{}, ""
	case "/reload":
		return eventbus.ReloadVectorDBEvent{}, "Reloading vector database"
	case "/clear":
		return eventbus.ClearTranscriptEvent{}, ""
	case "/help":
		return nil, HelpText
	}
	return nil, "Unknown command: " + name + " (try /help)"
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
