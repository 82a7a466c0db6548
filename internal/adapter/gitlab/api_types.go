package gitlab

import "time"

// Wire types for the subset of the GitLab v4 REST API this adapter consumes.
// They are decoded at the adapter boundary and mapped into domain types
// before anything else sees them.

type branchPayload struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

type commitPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type diffPayload struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
}

type comparePayload struct {
	Commits []commitPayload `json:"commits"`
	Diffs   []diffPayload   `json:"diffs"`
}

// errorPayload covers both shapes GitLab uses for error bodies:
// {"message": "..."} and {"error": "..."}. The message field is sometimes a
// structured object, hence interface{}.
type errorPayload struct {
	Message interface{} `json:"message"`
	Error   string      `json:"error"`
}
