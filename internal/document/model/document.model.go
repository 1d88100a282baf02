package model

import "time"

const DefaultTitle = "Untitled Document"

// Document field names follow what the editor client already reads.
type Document struct {
	ID        int64     `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateDocRequest struct {
	Title string `json:"title"`
}

type UpdateContentRequest struct {
	Content string `json:"content"`
}

type RenameRequest struct {
	Title string `json:"title"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
