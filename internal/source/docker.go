package source

import (
	"time"

	"github.com/Geun-Oh/scrollback/internal/logging"
)

// NewDockerSource creates a source reading a container's logs through
// `docker logs --timestamps`. Docker's timestamps replace the read time.
func NewDockerSource(container string, follow bool) *CommandSource {
	args := []string{"logs"}
	if follow {
		args = append(args, "--follow")
	}
	args = append(args, "--timestamps", container)

	return &CommandSource{
		name:    "docker:" + container,
		command: "docker",
		args:    args,
		parse:   parseDockerTimestamp,
		logger:  logging.Component("source"),
	}
}

// parseDockerTimestamp splits the RFC3339Nano prefix docker adds to each
// line: "2025-01-26T13:32:19.123456789Z message...".
func parseDockerTimestamp(raw string) (time.Time, string) {
	for i := 0; i < len(raw) && i <= 35; i++ {
		if raw[i] != ' ' {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, raw[:i])
		if err != nil {
			break
		}
		return ts, raw[i+1:]
	}
	return time.Now(), raw
}
