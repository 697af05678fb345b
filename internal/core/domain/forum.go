package domain

import "time"

// Category is the root of the forum hierarchy. Categories are created by an
// explicit user action and are never updated or deleted by this client.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread belongs to exactly one category. Only its author may delete it.
// JSON field names follow the server's wire format (user_id, category_id).
type Thread struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"user_id"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Comment belongs to exactly one thread. Only its author may delete it.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"user_id"`
	ThreadID  int64     `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DirectoryEntry is the slice of a user record the directory cache needs.
type DirectoryEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
