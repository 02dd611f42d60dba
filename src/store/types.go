package store

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Source records where captured text came from.
type Source struct {
	App       string    `json:"app"`
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"`
}

type Task struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	OriginalText string     `json:"originalText"`
	Source       Source     `json:"source"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	Tags         []string   `json:"tags"`
	Reminder     *time.Time `json:"reminder"`
}

// TaskPatch lists the fields UpdateTask may change. Nil fields are kept.
type TaskPatch struct {
	Text     *string
	Status   *Status
	Priority *Priority
	DueDate  *time.Time
	Tags     []string
	Reminder *time.Time
}

type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    Source    `json:"source"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NotePatch struct {
	Text *string
	Tags []string
}

// Settings is a free-form JSON object; createdAt and lastUpdated are
// maintained by the store.
type Settings map[string]any

type Export struct {
	Tasks      []Task    `json:"tasks"`
	Notes      []Note    `json:"notes"`
	Settings   Settings  `json:"settings"`
	ExportedAt time.Time `json:"exportedAt"`
}

type Info struct {
	DataPath  string `json:"dataPath"`
	TaskCount int    `json:"taskCount"`
	NoteCount int    `json:"noteCount"`
	TotalSize int64  `json:"totalSize"`
}

type CleanupResult struct {
	TasksRemoved int `json:"tasksRemoved"`
	NotesRemoved int `json:"notesRemoved"`
}
