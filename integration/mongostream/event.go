package mongostream

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChangeEvent is one decoded change stream event. Document is populated for
// inserts and replaces always, and for updates only when the source watches
// with update lookup enabled.
type ChangeEvent struct {
	Operation   string   `json:"operation"`
	Database    string   `json:"database"`
	Collection  string   `json:"collection"`
	DocumentKey bson.Raw `json:"document_key,omitempty"`
	Document    bson.Raw `json:"document,omitempty"`
	ResumeToken bson.Raw `json:"resume_token,omitempty"`
}

// DecodeChangeEvent decodes a raw change stream document into a ChangeEvent.
// Source uses it internally; it is exported for callers iterating a change
// stream themselves.
func DecodeChangeEvent(current, resumeToken bson.Raw) (ChangeEvent, error) {
	var doc struct {
		OperationType string   `bson:"operationType"`
		DocumentKey   bson.Raw `bson:"documentKey"`
		FullDocument  bson.Raw `bson:"fullDocument"`
		Namespace     struct {
			Database   string `bson:"db"`
			Collection string `bson:"coll"`
		} `bson:"ns"`
	}
	if err := bson.Unmarshal(current, &doc); err != nil {
		return ChangeEvent{}, errors.Join(ErrDecodeFailed, err)
	}

	return ChangeEvent{
		Operation:   doc.OperationType,
		Database:    doc.Namespace.Database,
		Collection:  doc.Namespace.Collection,
		DocumentKey: doc.DocumentKey,
		Document:    doc.FullDocument,
		ResumeToken: resumeToken,
	}, nil
}
