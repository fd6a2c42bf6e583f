// Package tool defines the bookmark tool catalog the model may invoke.
// Result payloads carry the structurally-tagged shapes (results array,
// single bookmark object, moved/deleted counts) the conversation manager's
// entity extraction and compaction summaries understand.
package tool

import (
	"context"
	"fmt"

	contractx "github.com/waritnan/marque/agent/contract"
	toolregx "github.com/waritnan/marque/agent/toolreg"
)

const (
	ToolSearchBookmarks = "bookmarks.search"
	ToolGetBookmark     = "bookmarks.get"
	ToolMoveBookmarks   = "bookmarks.move"
	ToolDeleteBookmarks = "bookmarks.delete"
	ToolCreateFolder    = "folders.create"
)

// RegisterCatalog wires every bookmark tool into the registry against the
// given library.
func RegisterCatalog(reg *toolregx.Registry, lib *Library) error {
	for _, t := range buildCatalog(lib) {
		if err := reg.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", t.Name, err)
		}
	}
	return nil
}

func buildCatalog(lib *Library) []toolregx.Tool {
	return []toolregx.Tool{
		{
			Name:        ToolSearchBookmarks,
			Description: "Search bookmarks by title or URL substring. Returns matching bookmarks ordered by id.",
			Parameters: toolregx.ObjectSchema(map[string]*toolregx.Property{
				"query": {Type: "string", Description: "Search text matched against titles and URLs"},
				"limit": {Type: "integer", Description: "Maximum number of results", Minimum: toolregx.Min(1), Maximum: toolregx.Max(20)},
			}, "query"),
			Execute: func(ctx context.Context, params map[string]any) (contractx.ToolResult, error) {
				query, _ := params["query"].(string)
				limit := 10
				if n, ok := params["limit"].(float64); ok {
					limit = int(n)
				}
				found := lib.Search(query, limit)
				results := make([]map[string]any, 0, len(found))
				for _, b := range found {
					results = append(results, map[string]any{
						"id":    b.ID,
						"type":  "bookmark",
						"title": b.Title,
						"url":   b.URL,
					})
				}
				return contractx.ToolResult{
					Success: true,
					Data:    map[string]any{"query": query, "results": results},
				}, nil
			},
		},
		{
			Name:        ToolGetBookmark,
			Description: "Fetch a single bookmark by id.",
			Parameters: toolregx.ObjectSchema(map[string]*toolregx.Property{
				"id": {Type: "string", Description: "Bookmark id"},
			}, "id"),
			Execute: func(ctx context.Context, params map[string]any) (contractx.ToolResult, error) {
				id, _ := params["id"].(string)
				b, ok := lib.Get(id)
				if !ok {
					return contractx.ToolResult{Success: false, Error: fmt.Sprintf("bookmark %q not found", id)}, nil
				}
				return contractx.ToolResult{
					Success: true,
					Data: map[string]any{"bookmark": map[string]any{
						"id":    b.ID,
						"type":  "bookmark",
						"title": b.Title,
						"url":   b.URL,
					}},
				}, nil
			},
		},
		{
			Name:        ToolCreateFolder,
			Description: "Create a bookmark folder with the given name.",
			Parameters: toolregx.ObjectSchema(map[string]*toolregx.Property{
				"name": {Type: "string", Description: "Folder name"},
			}, "name"),
			Execute: func(ctx context.Context, params map[string]any) (contractx.ToolResult, error) {
				name, _ := params["name"].(string)
				f := lib.CreateFolder(name)
				return contractx.ToolResult{
					Success: true,
					Data: map[string]any{"folder": map[string]any{
						"id":    f.ID,
						"type":  "folder",
						"title": f.Title,
					}},
				}, nil
			},
		},
		{
			Name:        ToolMoveBookmarks,
			Description: "Move bookmarks into a folder. The folder must already exist.",
			Parameters: toolregx.ObjectSchema(map[string]*toolregx.Property{
				"ids":       {Type: "array", Description: "Bookmark ids to move", Items: &toolregx.Property{Type: "string"}},
				"folder_id": {Type: "string", Description: "Target folder id"},
			}, "ids", "folder_id"),
			Execute: func(ctx context.Context, params map[string]any) (contractx.ToolResult, error) {
				ids := stringSlice(params["ids"])
				folderID, _ := params["folder_id"].(string)
				moved, missing, err := lib.Move(ids, folderID)
				if err != nil {
					return contractx.ToolResult{Success: false, Error: err.Error()}, nil
				}
				data := map[string]any{"moved": moved, "folder_id": folderID}
				if len(missing) > 0 {
					data["missing"] = missing
				}
				return contractx.ToolResult{Success: true, Data: data}, nil
			},
		},
		{
			Name:        ToolDeleteBookmarks,
			Description: "Delete bookmarks by id.",
			Parameters: toolregx.ObjectSchema(map[string]*toolregx.Property{
				"ids": {Type: "array", Description: "Bookmark ids to delete", Items: &toolregx.Property{Type: "string"}},
			}, "ids"),
			Execute: func(ctx context.Context, params map[string]any) (contractx.ToolResult, error) {
				deleted := lib.Delete(stringSlice(params["ids"]))
				return contractx.ToolResult{
					Success: true,
					Data:    map[string]any{"deleted": deleted},
				}, nil
			},
		},
	}
}

func stringSlice(raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
