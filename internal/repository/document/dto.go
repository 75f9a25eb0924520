package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
)

// documentToHash converts a domain Document to a map for HSET. The "tags"
// field carries comma-joined key=value pairs for the TAG index; tags_json
// and fields_json keep the canonical maps for hydration.
func documentToHash(doc domdoc.Document) (map[string]string, error) {
	tagsJSON, err := json.Marshal(doc.Tags())
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	fieldsJSON, err := json.Marshal(doc.Fields())
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	return map[string]string{
		"id":          doc.ID(),
		"title":       doc.Title(),
		"text":        doc.Text(),
		"tags":        tagIndexValue(doc.Tags()),
		"tags_json":   string(tagsJSON),
		"fields_json": string(fieldsJSON),
		"updated_at":  strconv.FormatInt(doc.UpdatedAt(), 10),
	}, nil
}

// documentFromHash hydrates a domain Document from an HGETALL result map.
func documentFromHash(m map[string]string) (domdoc.Document, error) {
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	tags := map[string]string{}
	if m["tags_json"] != "" {
		if err := json.Unmarshal([]byte(m["tags_json"]), &tags); err != nil {
			return domdoc.Document{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	fields := map[string]float64{}
	if m["fields_json"] != "" {
		if err := json.Unmarshal([]byte(m["fields_json"]), &fields); err != nil {
			return domdoc.Document{}, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	return domdoc.Reconstruct(m["id"], m["title"], m["text"], tags, fields, updatedAt), nil
}

// tagIndexValue flattens tag annotations into the comma-separated TAG
// field value, sorted for stable storage.
func tagIndexValue(tags map[string]string) string {
	pairs := make([]string, 0, len(tags))
	for k, v := range tags {
		pairs = append(pairs, tagPair(k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func tagPair(k, v string) string {
	return k + "=" + v
}
