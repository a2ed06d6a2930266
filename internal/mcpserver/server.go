// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the vocabulary session as tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vocab/internal/session"
)

const formatURI = "vocab://file-format"

// Server wraps the MCP server with vocabulary tools.
type Server struct {
	mcp *server.MCPServer
	svc *session.Service
}

// New creates a new MCP server with all vocabulary tools registered.
func New(svc *session.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Vocab",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	position := func(desc string) mcp.ToolOption {
		return mcp.WithNumber("position", mcp.Required(), mcp.Min(1), mcp.Description(desc))
	}

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List the topics of the working list with their 1-based positions and word counts."),
	), s.listTopics)

	s.mcp.AddTool(mcp.NewTool("list_words",
		mcp.WithDescription("List the words of one topic."),
		position("Topic position"),
	), s.listWords)

	s.mcp.AddTool(mcp.NewTool("insert_topic",
		mcp.WithDescription("Create a topic and insert it before or after an existing position. "+
			"The list must already hold at least one topic; use load_file or import_file to start one."),
		position("Existing topic position to insert next to"),
		mcp.WithString("placement", mcp.Required(), mcp.Enum("before", "after"),
			mcp.Description("Insert before or after the given position")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Topic name")),
		mcp.WithArray("words", mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Optional initial words")),
	), s.insertTopic)

	s.mcp.AddTool(mcp.NewTool("remove_topic",
		mcp.WithDescription("Remove a topic and all its words."),
		position("Topic position"),
	), s.removeTopic)

	s.mcp.AddTool(mcp.NewTool("add_word",
		mcp.WithDescription("Add a word to a topic. Refused if the topic already lists it (ignoring case)."),
		position("Topic position"),
		mcp.WithString("word", mcp.Required(), mcp.Description("Word to add")),
	), s.addWord)

	s.mcp.AddTool(mcp.NewTool("remove_word",
		mcp.WithDescription("Remove the first case-insensitive match of a word from a topic."),
		position("Topic position"),
		mcp.WithString("word", mcp.Required(), mcp.Description("Word to remove")),
	), s.removeWord)

	s.mcp.AddTool(mcp.NewTool("change_word",
		mcp.WithDescription("Replace the first case-insensitive match of a word in a topic."),
		position("Topic position"),
		mcp.WithString("old", mcp.Required(), mcp.Description("Word to replace")),
		mcp.WithString("new", mcp.Required(), mcp.Description("Replacement word")),
	), s.changeWord)

	s.mcp.AddTool(mcp.NewTool("search_word",
		mcp.WithDescription("Find every topic that lists a word (case-insensitive)."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Word to look for")),
	), s.searchWord)

	s.mcp.AddTool(mcp.NewTool("words_starting_with",
		mcp.WithDescription("List every word starting with a letter, sorted ignoring case."),
		mcp.WithString("letter", mcp.Required(), mcp.Description("A single letter")),
	), s.wordsStartingWith)

	s.mcp.AddTool(mcp.NewTool("load_file",
		mcp.WithDescription("Replace the working list with a vault file. Nothing changes if the file is invalid."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path ending in .txt")),
	), s.loadFile)

	s.mcp.AddTool(mcp.NewTool("save_file",
		mcp.WithDescription("Write the working list to a vault file."),
		mcp.WithString("path", mcp.Description("Target path; defaults to the loaded file")),
		mcp.WithString("checksum", mcp.Description("Expected checksum of the file on disk; refuse to overwrite if it changed")),
	), s.saveFile)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List the vocabulary files in the vault."),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("search_vault",
		mcp.WithDescription("Full-text search over topics and words of every vault file."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchVault)

	s.mcp.AddTool(mcp.NewTool("import_file",
		mcp.WithDescription("Fetch a vocabulary file from an http(s) URL or a base64 data: URI "+
			"and store it in the vault. Content MUST follow the file format contract; read it first via "+
			"the get_format_contract tool or the "+formatURI+" resource."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:text/plain;base64,... URI")),
		mcp.WithString("path", mcp.Description("Target path in the vault (defaults to the URL's file name)")),
	), s.importFile)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the vocabulary file format contract. "+
			"Call this before importing or editing files."),
	), s.getFormatContract)

	// Resource: file format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Vocabulary File Format",
			mcp.WithResourceDescription("Line format that every vocabulary file follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) listTopics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topics := s.svc.ListTopics(ctx)
	if len(topics) == 0 {
		return mcp.NewToolResultText("no topics loaded"), nil
	}
	var b strings.Builder
	for _, t := range topics {
		fmt.Fprintf(&b, "%d. %s (%d words)\n", t.Position, t.Name, t.WordCount)
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

func (s *Server) listWords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	topic, err := s.svc.ListWords(ctx, pos)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(topic)
}

func (s *Server) insertTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	placement, err := req.RequireString("placement")
	if err != nil {
		return errResult(err)
	}
	name, err := req.RequireString("name")
	if err != nil {
		return errResult(err)
	}
	words := req.GetStringSlice("words", nil)

	insert := s.svc.InsertTopicBefore
	switch placement {
	case "before":
	case "after":
		insert = s.svc.InsertTopicAfter
	default:
		return mcp.NewToolResultError(fmt.Sprintf("placement must be before or after, got %q", placement)), nil
	}
	topic, err := insert(ctx, pos, name, words)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(topic)
}

func (s *Server) removeTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	topic, err := s.svc.RemoveTopic(ctx, pos)
	if err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s (%d words)", topic.Name, len(topic.Words))), nil
}

func (s *Server) addWord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	word, err := req.RequireString("word")
	if err != nil {
		return errResult(err)
	}
	if err := s.svc.AddWord(ctx, pos, word); err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", strings.TrimSpace(word))), nil
}

func (s *Server) removeWord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	word, err := req.RequireString("word")
	if err != nil {
		return errResult(err)
	}
	if err := s.svc.RemoveWord(ctx, pos, word); err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", word)), nil
}

func (s *Server) changeWord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireInt("position")
	if err != nil {
		return errResult(err)
	}
	oldWord, err := req.RequireString("old")
	if err != nil {
		return errResult(err)
	}
	newWord, err := req.RequireString("new")
	if err != nil {
		return errResult(err)
	}
	if err := s.svc.ChangeWord(ctx, pos, oldWord, newWord); err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("changed: %s -> %s", oldWord, strings.TrimSpace(newWord))), nil
}

func (s *Server) searchWord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("word")
	if err != nil {
		return errResult(err)
	}
	hits, err := s.svc.SearchWord(ctx, word)
	if err != nil {
		return errResult(err)
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("not found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) wordsStartingWith(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	letter, err := req.RequireString("letter")
	if err != nil {
		return errResult(err)
	}
	words, err := s.svc.WordsStartingWith(ctx, letter)
	if err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText(strings.Join(words, "\n")), nil
}

func (s *Server) loadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return errResult(err)
	}
	res, err := s.svc.Load(ctx, path)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(res)
}

func (s *Server) saveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Save(ctx, req.GetString("path", ""), req.GetString("checksum", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(res)
}

func (s *Server) listFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.svc.Files(ctx)
	if err != nil {
		return errResult(err)
	}
	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) searchVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return errResult(err)
	}
	results, err := s.svc.SearchVault(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(results)
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FileFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FileFormatContract,
		},
	}, nil
}
