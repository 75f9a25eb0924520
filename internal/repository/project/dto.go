package project

import (
	"fmt"
	"strconv"

	domproj "github.com/annodex-io/annodex/internal/domain/project"
)

// projectToHash converts a domain Project to a map for HSET.
func projectToHash(p domproj.Project) map[string]string {
	return map[string]string{
		"id":          p.ID(),
		"name":        p.Name(),
		"description": p.Description(),
		"folder":      p.Folder(),
		"created_at":  strconv.FormatInt(p.CreatedAt(), 10),
	}
}

// projectFromHash hydrates a domain Project from an HGETALL result map.
func projectFromHash(m map[string]string) (domproj.Project, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domproj.Reconstruct(m["id"], m["name"], m["description"], m["folder"], createdAt), nil
}
