package requests

import (
	"fmt"
	"strconv"
	"time"

	"github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// requestToHash converts a domain Request to a map for HSET.
func requestToHash(req request.Request) map[string]string {
	p := req.Payload()
	return map[string]string{
		"id":           req.ID(),
		"email":        req.Email(),
		"status":       string(req.Status()),
		"kind":         string(p.Kind()),
		"project":      p.Project(),
		"role_level":   strconv.Itoa(int(p.Role())),
		"name":         p.Name(),
		"description":  p.Description(),
		"folder":       p.Folder(),
		"submitted_at": strconv.FormatInt(req.SubmittedAt().UnixMilli(), 10),
	}
}

// requestFromHash hydrates a domain Request from an HGETALL result map.
func requestFromHash(m map[string]string) (request.Request, error) {
	submittedMillis, err := strconv.ParseInt(m["submitted_at"], 10, 64)
	if err != nil {
		return request.Request{}, fmt.Errorf("invalid submitted_at %q: %w", m["submitted_at"], err)
	}

	level := 0
	if m["role_level"] != "" {
		if level, err = strconv.Atoi(m["role_level"]); err != nil {
			return request.Request{}, fmt.Errorf("invalid role_level %q: %w", m["role_level"], err)
		}
	}

	payload := request.Reconstruct(
		request.Kind(m["kind"]),
		m["project"],
		role.Role(level),
		m["name"],
		m["description"],
		m["folder"],
	)

	return request.ReconstructRequest(
		m["id"],
		m["email"],
		time.UnixMilli(submittedMillis).UTC(),
		request.Status(m["status"]),
		payload,
	), nil
}
