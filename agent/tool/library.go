package tool

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Bookmark is the minimal record the agent tools operate on. Real storage
// and browser sync live outside the agent core; this in-memory library is
// the collaborator the catalog binds to.
type Bookmark struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	FolderID string `json:"folder_id,omitempty"`
}

type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Library struct {
	mu        sync.Mutex
	bookmarks map[string]*Bookmark
	folders   map[string]*Folder
	nextID    int
}

func NewLibrary() *Library {
	return &Library{
		bookmarks: make(map[string]*Bookmark, 16),
		folders:   make(map[string]*Folder, 4),
	}
}

func (l *Library) Add(title, url string) *Bookmark {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	b := &Bookmark{
		ID:    fmt.Sprintf("bm-%d", l.nextID),
		Title: title,
		URL:   url,
	}
	l.bookmarks[b.ID] = b
	return b
}

func (l *Library) Get(id string) (*Bookmark, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookmarks[id]
	if !ok {
		return nil, false
	}
	clone := *b
	return &clone, true
}

// Search returns bookmarks whose title or URL contains the query,
// case-insensitive, ordered by id for stable output.
func (l *Library) Search(query string, limit int) []Bookmark {
	l.mu.Lock()
	defer l.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	var out []Bookmark
	for _, b := range l.bookmarks {
		if needle == "" ||
			strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.URL), needle) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (l *Library) CreateFolder(name string) *Folder {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	f := &Folder{
		ID:    fmt.Sprintf("fd-%d", l.nextID),
		Title: name,
	}
	l.folders[f.ID] = f
	return f
}

// Move places the given bookmarks into folderID and reports how many were
// actually moved and which ids were unknown.
func (l *Library) Move(ids []string, folderID string) (int, []string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.folders[folderID]; !ok {
		return 0, nil, fmt.Errorf("folder %q not found", folderID)
	}

	moved := 0
	var missing []string
	for _, id := range ids {
		b, ok := l.bookmarks[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		b.FolderID = folderID
		moved++
	}
	return moved, missing, nil
}

func (l *Library) Delete(ids []string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := l.bookmarks[id]; ok {
			delete(l.bookmarks, id)
			deleted++
		}
	}
	return deleted
}
