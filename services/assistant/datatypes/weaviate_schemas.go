// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

func GetAccountDocumentSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "AccountDocument",
		Description: "A chunk of an uploaded account document with its metadata.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The main content of the document chunk.",
				Tokenization: "word",
			},
			{
				Name:         "title",
				DataType:     []string{"text"},
				Description:  "Human-readable document title.",
				Tokenization: "word",
			},
			{
				Name:            "filename",
				DataType:        []string{"text"},
				Description:     "Original filename of the uploaded document.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "The system or path the document came from.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "upload_date",
				DataType:        []string{"text"},
				Description:     "ISO date string of when the document was uploaded.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "created_at",
				DataType:        []string{"text"},
				Description:     "ISO date string of when the document was created upstream.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "url",
				DataType:     []string{"text"},
				Description:  "Canonical link to the document.",
				Tokenization: "field",
			},
			{
				Name:         "file_url",
				DataType:     []string{"text"},
				Description:  "Direct download link for the document file.",
				Tokenization: "field",
			},
		},
	}
}

func GetAccountMeetingSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "AccountMeeting",
		Description: "A chunk of a meeting transcript with its metadata.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The transcript chunk text.",
				Tokenization: "word",
			},
			{
				Name:         "meeting_title",
				DataType:     []string{"text"},
				Description:  "Human-readable meeting title.",
				Tokenization: "word",
			},
			{
				Name:         "title",
				DataType:     []string{"text"},
				Description:  "Alternate title field used by some transcript providers.",
				Tokenization: "word",
			},
			{
				Name:            "meeting_date",
				DataType:        []string{"text"},
				Description:     "ISO date string of when the meeting took place.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "date",
				DataType:        []string{"text"},
				Description:     "Alternate date field used by some transcript providers.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "meeting_url",
				DataType:     []string{"text"},
				Description:  "Link to the meeting recording or event.",
				Tokenization: "field",
			},
			{
				Name:         "url",
				DataType:     []string{"text"},
				Description:  "Alternate link field used by some transcript providers.",
				Tokenization: "field",
			},
			{
				Name:         "transcript_url",
				DataType:     []string{"text"},
				Description:  "Link to the full transcript.",
				Tokenization: "field",
			},
			{
				Name:        "participants",
				DataType:    []string{"text[]"},
				Description: "Meeting participant names.",
			},
			{
				Name:        "speakers",
				DataType:    []string{"text[]"},
				Description: "Speaker names detected in the transcript.",
			},
		},
	}
}

func EnsureWeaviateSchema(client *weaviate.Client) {
	// A list of functions that return our schema definitions.
	schemaGetters := []func() *models.Class{
		GetAccountDocumentSchema,
		GetAccountMeetingSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		// Check if the class already exists.
		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			// If it doesn't exist, the client returns an error. We can now create it.
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				// If we fail to create it, it's a fatal error.
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
