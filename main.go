package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	convox "github.com/waritnan/marque/agent/convo"
	llmx "github.com/waritnan/marque/agent/llm"
	orchestratorx "github.com/waritnan/marque/agent/orchestrator"
	promptx "github.com/waritnan/marque/agent/prompt"
	statex "github.com/waritnan/marque/agent/state"
	toolx "github.com/waritnan/marque/agent/tool"
	toolregx "github.com/waritnan/marque/agent/toolreg"
	configx "github.com/waritnan/marque/pkg/config"
	_ "github.com/waritnan/marque/pkg/logger/autoload"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	client, err := llmx.NewChatClient(*llmCfg)
	if err != nil {
		return fmt.Errorf("init model client: %w", err)
	}

	library := toolx.NewLibrary()
	seedLibrary(library)

	registry := toolregx.NewRegistry()
	if err := toolx.RegisterCatalog(registry, library); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	convoCfg := configx.MustNew[convox.Config]("CONVO")
	manager, err := convox.NewManager(*convoCfg)
	if err != nil {
		return fmt.Errorf("init conversation manager: %w", err)
	}

	prompts := promptx.LoadPromptSet()
	orchCfg := configx.MustNew[orchestratorx.Config]("AGENT")
	orchCfg.SystemPrompt = prompts.System

	var opts []orchestratorx.Option
	if storeCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS"); err == nil {
		store, err := statex.NewUpstashRedisStore(*storeCfg)
		if err != nil {
			return fmt.Errorf("init snapshot store: %w", err)
		}
		opts = append(opts, orchestratorx.WithArchive(store))
	}

	orch, err := orchestratorx.New(registry, manager, client, *orchCfg, opts...)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	return repl(ctx, orch)
}

func repl(ctx context.Context, orch *orchestratorx.Orchestrator) error {
	fmt.Println("bookmark agent ready; type a request, or /quit to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if sessionID, ok := strings.CutPrefix(line, "/save "); ok {
			if err := orch.SaveSession(ctx, strings.TrimSpace(sessionID)); err != nil {
				fmt.Println("save failed:", err)
			} else {
				fmt.Println("saved")
			}
			continue
		}
		if sessionID, ok := strings.CutPrefix(line, "/load "); ok {
			if err := orch.RestoreSession(ctx, strings.TrimSpace(sessionID)); err != nil {
				fmt.Println("load failed:", err)
			} else {
				fmt.Println("restored")
			}
			continue
		}

		progress := &orchestratorx.Progress{
			OnToken: func(token string) {
				fmt.Print(token)
			},
			OnThinkingStep: func(step string) {
				log.Debug().Str("step", step).Msg("progress")
			},
			OnComplete: func(string) {
				fmt.Println()
			},
			OnError: func(err error) {
				fmt.Println(orchestratorx.UserMessage(err))
			},
		}
		if _, err := orch.RespondStream(ctx, line, progress); err != nil {
			log.Warn().Err(err).Msg("turn failed")
		}
	}
}

func seedLibrary(lib *toolx.Library) {
	folders := map[string]string{}
	for _, name := range []string{"Reading List", "Work", "Recipes"} {
		folders[name] = lib.CreateFolder(name).ID
	}

	seeds := []struct {
		title, url, folder string
	}{
		{"Go blog", "https://go.dev/blog", "Reading List"},
		{"Effective Go", "https://go.dev/doc/effective_go", "Reading List"},
		{"Team wiki", "https://wiki.example.com", "Work"},
		{"Sprint board", "https://board.example.com", "Work"},
		{"Sourdough starter", "https://recipes.example.com/sourdough", "Recipes"},
	}
	for _, s := range seeds {
		b := lib.Add(s.title, s.url)
		if folderID, ok := folders[s.folder]; ok {
			_, _, _ = lib.Move([]string{b.ID}, folderID)
		}
	}
}
