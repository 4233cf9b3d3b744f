package models

import "time"

// Document is the Firestore record tracking one PDF enrichment job.
type Document struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}
