package api

import (
	"context"

	"github.com/abhi-jithb/storyshelf/app/catalog"
	"github.com/abhi-jithb/storyshelf/app/database"
	"github.com/abhi-jithb/storyshelf/app/pipeline"
	"github.com/abhi-jithb/storyshelf/app/query"
)

type PipelineInterface interface {
	Snapshot() []catalog.Book
	Size() int
	IsComplete() bool
	Err() error
	Refresh(ctx context.Context)
}

var _ PipelineInterface = (*pipeline.Pipeline)(nil)

type Handler struct {
	pipeline PipelineInterface
	engine   *query.Engine
	searcher *query.Searcher
	bookRepo database.BookRepository
	version  string
}
