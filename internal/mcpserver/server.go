// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the document reader to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docservice"
	"github.com/starford/docxreader/internal/models"
)

// defaultWindow is the number of paragraphs, entries or results returned
// when a tool call omits j.
const defaultWindow = 50

// Server wraps the MCP server with document tools. A stdio server has a
// single client, so it owns exactly one session.
type Server struct {
	mcp     *server.MCPServer
	lib     *docservice.Library
	reg     *docservice.Registry
	session *docservice.Session
}

// New creates a new MCP server with all document tools registered.
func New(reg *docservice.Registry, lib *docservice.Library, version string) *Server {
	s := &Server{lib: lib, reg: reg, session: reg.Create()}

	s.mcp = server.NewMCPServer(
		"docxreader",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the .docx documents in the library, in natural order."),
		mcp.WithString("dir", mcp.Description("Optional sub-directory to list (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Load a library document into the session, replacing any loaded one. "+
			"Returns the document summary."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library path of the document (e.g. reports/q1.docx)")),
	), s.loadDocument)

	s.mcp.AddTool(mcp.NewTool("document_info",
		mcp.WithDescription("Summary of the loaded document: path, title, paragraph and outline counts."),
	), s.documentInfo)

	s.mcp.AddTool(mcp.NewTool("get_paragraphs",
		mcp.WithDescription("Return paragraphs [i, j) of the loaded document with their styled runs."),
		mcp.WithNumber("i", mcp.Description("First paragraph position (default 0)")),
		mcp.WithNumber("j", mcp.Description("One past the last paragraph position")),
	), s.getParagraphs)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Return outline entries [i, j) of the loaded document. "+
			"Each entry links to the paragraph position of its heading."),
		mcp.WithNumber("i", mcp.Description("First entry position (default 0)")),
		mcp.WithNumber("j", mcp.Description("One past the last entry position")),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("nearest_heading",
		mcp.WithDescription("Find the outline entry governing a paragraph position: "+
			"the last heading at or before it."),
		mcp.WithNumber("position", mcp.Required(), mcp.Description("Paragraph position")),
	), s.nearestHeading)

	s.mcp.AddTool(mcp.NewTool("search_document",
		mcp.WithDescription("Search the loaded document for a substring. Results [i, j) are "+
			"returned in document order, one per occurrence. Narrowing a previous query "+
			"reuses its results."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to find (empty clears the search)")),
		mcp.WithBoolean("match_case", mcp.Description("Case-sensitive match")),
		mcp.WithBoolean("only_outline", mcp.Description("Only search headings")),
		mcp.WithNumber("i", mcp.Description("First result position (default 0)")),
		mcp.WithNumber("j", mcp.Description("One past the last result position")),
	), s.searchDocument)

	s.mcp.AddTool(mcp.NewTool("clear_search",
		mcp.WithDescription("Discard cached search results of the session."),
	), s.clearSearch)

	s.mcp.AddTool(mcp.NewTool("search_library",
		mcp.WithDescription("Full-text search across every document in the library catalog."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchLibrary)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Store a .docx document in the library. The source is a base64 "+
			"data URI or an http(s) URL. Read the docxreader://vocabulary resource for what "+
			"the reader understands."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:...;base64,... URI or http(s) URL")),
		mcp.WithString("path", mcp.Description("Library path to store the document at (generated when empty)")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing document")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("get_vocabulary",
		mcp.WithDescription("Returns the WordprocessingML vocabulary the reader understands."),
	), s.getVocabulary)

	s.mcp.AddResource(
		mcp.NewResource(VocabularyURI, "Markup Vocabulary",
			mcp.WithResourceDescription("WordprocessingML elements the reader interprets and how."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readVocabularyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	defer s.reg.Close(s.session.ID()) //nolint:errcheck
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// errorResult turns err into a tool error with a short classification prefix.
func errorResult(err error) *mcp.CallToolResult {
	var (
		qe *apperr.QueryError
		pe *apperr.PackageError
		fe *apperr.FormatError
	)
	switch {
	case errors.Is(err, apperr.ErrNoDocument):
		return mcp.NewToolResultError("no document loaded: call load_document first")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError("already exists: " + err.Error())
	case errors.As(err, &qe):
		return mcp.NewToolResultError("invalid argument: " + err.Error())
	case errors.As(err, &pe), errors.As(err, &fe), errors.Is(err, docservice.ErrNotDocx):
		return mcp.NewToolResultError("invalid document: " + err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

// windowArgs reads i and j. A missing j is i+defaultWindow.
func windowArgs(req mcp.CallToolRequest) (int, int, error) {
	i := req.GetInt("i", 0)
	j := req.GetInt("j", i+defaultWindow)
	if i < 0 || j < 0 {
		return 0, 0, &apperr.QueryError{Field: "i", Msg: "window bounds must not be negative"}
	}
	return i, j, nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.lib.List(ctx, req.GetString("dir", ""))
	if err != nil {
		return errorResult(err), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	paths := make([]string, len(docs))
	for k, d := range docs {
		paths[k] = d.Path
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) loadDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.session.Load(path); err != nil {
		return errorResult(err), nil
	}
	info, _ := s.session.Info()
	return jsonResult(info), nil
}

func (s *Server) documentInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, ok := s.session.Info()
	if !ok {
		return errorResult(apperr.ErrNoDocument), nil
	}
	return jsonResult(info), nil
}

func (s *Server) getParagraphs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := s.session.Info(); !ok {
		return errorResult(apperr.ErrNoDocument), nil
	}
	i, j, err := windowArgs(req)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.session.Paragraphs(i, j)), nil
}

func (s *Server) getOutline(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := s.session.Info(); !ok {
		return errorResult(apperr.ErrNoDocument), nil
	}
	i, j, err := windowArgs(req)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.session.OutlineEntries(i, j)), nil
}

func (s *Server) nearestHeading(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.session.Info(); !ok {
		return errorResult(apperr.ErrNoDocument), nil
	}
	e, found := s.session.NearestOutlineEntry(pos)
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("no heading at or before position %d", pos)), nil
	}
	return jsonResult(e), nil
}

func (s *Server) searchDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	i, j, err := windowArgs(req)
	if err != nil {
		return errorResult(err), nil
	}
	q := models.SearchQuery{
		Text:        text,
		MatchCase:   req.GetBool("match_case", false),
		OnlyOutline: req.GetBool("only_outline", false),
	}
	return jsonResult(s.session.Search(q, i, j)), nil
}

func (s *Server) clearSearch(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.ClearSearch()
	return mcp.NewToolResultText("search cleared"), nil
}

func (s *Server) searchLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.lib.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getVocabulary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Vocabulary), nil
}

func (s *Server) readVocabularyResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      VocabularyURI,
			MIMEType: "text/markdown",
			Text:     Vocabulary,
		},
	}, nil
}
