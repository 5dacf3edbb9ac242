// Command chatbot runs the conversational assistant as a terminal REPL.
//
// Queries are routed to one of three answer strategies (direct LLM,
// retrieval over loaded documents, web search) and the chosen route is
// shown as a badge above each answer. Documents are loaded with the
// /load command; /stats prints the per-route counters.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/kataras/golog"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/config"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/llms/groq"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/log"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/router"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/session"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/strategy"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/tool"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

	badgeStyles = map[router.Route]lipgloss.Style{
		router.RouteDirect:    lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15")),
		router.RouteRetrieval: lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")),
		router.RouteSearch:    lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
	}

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		verbose bool
	)
	flag.StringVar(&cfgPath, "config", "chatbot.yaml", "path to YAML config file")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	logger := log.NewGologLogger(golog.Default)
	if verbose {
		logger.SetLevel(log.LogLevelDebug)
	} else {
		logger.SetLevel(log.LogLevelWarn)
	}
	log.SetDefaultLogger(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	runREPL(orch)
}

// buildOrchestrator wires the routing engine, the three strategies, and
// the corpus pipeline from config.
func buildOrchestrator(cfg *config.AppConfig, logger log.Logger) (*session.Orchestrator, error) {
	model, err := groq.New(
		groq.WithAPIKey(os.Getenv(cfg.LLM.APIKeyEnv)),
		groq.WithBaseURL(cfg.LLM.BaseURL),
		groq.WithModel(groq.ModelName(cfg.LLM.Model)),
	)
	if err != nil {
		return nil, fmt.Errorf("LLM client: %w", err)
	}

	searcher, err := buildSearcher(cfg)
	if err != nil {
		return nil, err
	}

	keywords := router.Keywords{
		GreetingPatterns: cfg.Routing.GreetingPatterns,
		RecencyKeywords:  cfg.Routing.RecencyKeywords,
		DocumentKeywords: cfg.Routing.DocumentKeywords,
	}
	engineOpts := []router.EngineOption{router.WithLogger(logger)}
	if cfg.Routing.UseClassifier {
		engineOpts = append(engineOpts, router.WithClassifier(model, cfg.Routing.ContextWindow))
	}
	engine := router.NewEngine(keywords, engineOpts...)

	llmTimeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second

	strategies := map[router.Route]strategy.Strategy{
		router.RouteDirect: strategy.NewDirect(model,
			strategy.WithDirectTemperature(cfg.LLM.Temperature),
			strategy.WithDirectMaxTokens(cfg.LLM.MaxTokens),
			strategy.WithDirectTimeout(llmTimeout),
		),
		router.RouteSearch: strategy.NewSearch(searcher, model,
			strategy.WithSearchTimeout(llmTimeout+time.Duration(cfg.Search.TimeoutSecs)*time.Second),
		),
	}

	orchOpts := []session.OrchestratorOption{
		session.WithMemory(memory.NewConversationMemory(memory.WithMaxTurns(cfg.Memory.MaxTurns))),
		session.WithOrchestratorLogger(logger),
	}

	// Document support needs an embedding key; without one the bot still
	// answers direct and search queries.
	if embedderKey := os.Getenv(cfg.Embedder.APIKeyEnv); embedderKey != "" {
		embedder, err := corpus.NewOpenAIEmbedder(embedderKey,
			corpus.WithEmbedderBaseURL(cfg.Embedder.BaseURL),
			corpus.WithEmbedderModel(cfg.Embedder.Model),
			corpus.WithEmbedderBatchSize(cfg.Embedder.BatchSize),
		)
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}

		retriever := session.NewCorpusRetriever(embedder)
		ingestor := corpus.NewIngestor(embedder,
			corpus.WithChunkSize(cfg.Retrieval.ChunkSize),
			corpus.WithChunkOverlap(cfg.Retrieval.ChunkOverlap),
			corpus.WithIngestorLogger(logger),
		)

		strategies[router.RouteRetrieval] = strategy.NewRetrieval(retriever, model,
			strategy.WithRetrievalK(cfg.Retrieval.K),
			strategy.WithRetrievalMaxSources(cfg.Retrieval.MaxSources),
			strategy.WithRetrievalTimeout(llmTimeout),
		)
		orchOpts = append(orchOpts, session.WithCorpus(ingestor, retriever))
	} else {
		fmt.Println(faintStyle.Render(fmt.Sprintf("%s not set; /load is disabled", cfg.Embedder.APIKeyEnv)))
	}

	return session.NewOrchestrator(engine, strategies, orchOpts...), nil
}

func buildSearcher(cfg *config.AppConfig) (tool.Searcher, error) {
	client := &http.Client{Timeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second}

	switch cfg.Search.Provider {
	case "duckduckgo", "":
		return tool.NewDuckDuckGoSearch(
			tool.WithDuckDuckGoMaxResults(cfg.Search.MaxResults),
			tool.WithDuckDuckGoHTTPClient(client),
		), nil
	case "brave":
		return tool.NewBraveSearch("",
			tool.WithBraveCount(cfg.Search.MaxResults),
			tool.WithBraveHTTPClient(client),
		)
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}

func runREPL(orch *session.Orchestrator) {
	fmt.Println(titleStyle.Render("Smart Chatbot"))
	fmt.Println(faintStyle.Render("Commands: /load <files...>  /clear  /stats  /quit"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()

	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, orch, line); quit {
				return
			}
			continue
		}

		resp, err := orch.HandleQuery(ctx, line)
		if err != nil {
			if err == session.ErrEmptyQuery {
				continue
			}
			fmt.Println(errorStyle.Render("error: " + err.Error()))
			continue
		}

		printResponse(resp)
	}
}

// runCommand handles a /-prefixed REPL command. Returns true on /quit.
func runCommand(ctx context.Context, orch *session.Orchestrator, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/clear":
		orch.Reset()
		fmt.Println(faintStyle.Render("conversation cleared"))

	case "/stats":
		printStats(orch)

	case "/load":
		if len(fields) < 2 {
			fmt.Println(errorStyle.Render("usage: /load <files...>"))
			break
		}
		loadFiles(ctx, orch, fields[1:])

	default:
		fmt.Println(errorStyle.Render("unknown command " + fields[0]))
	}
	return false
}

func loadFiles(ctx context.Context, orch *session.Orchestrator, paths []string) {
	var files []corpus.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("read %s: %v", path, err)))
			continue
		}
		files = append(files, corpus.File{Name: filepath.Base(path), Data: data})
	}
	if len(files) == 0 {
		return
	}

	ingestion, err := orch.LoadFiles(ctx, files)
	if err != nil {
		fmt.Println(errorStyle.Render("load failed: " + err.Error()))
		return
	}

	for _, failure := range ingestion.Failures {
		fmt.Println(errorStyle.Render("skipped " + failure.Error()))
	}
	fmt.Println(faintStyle.Render(fmt.Sprintf("indexed %d chunks from %s",
		ingestion.Handle.ChunkCount, strings.Join(ingestion.Handle.FileNames, ", "))))
}

func printResponse(resp *session.Response) {
	badge := badgeStyles[resp.UsedRoute].Render(strings.ToUpper(string(resp.UsedRoute)))
	detail := fmt.Sprintf("%.0f%% %s", resp.Decision.Confidence*100, resp.Decision.TriggeredBy)
	if resp.FallbackUsed {
		detail += fmt.Sprintf(", fell back from %s", resp.Decision.Route)
	}

	fmt.Println(badge + " " + faintStyle.Render(detail))
	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println(faintStyle.Render("sources: " + strings.Join(resp.Sources, ", ")))
	}
	fmt.Println()
}

func printStats(orch *session.Orchestrator) {
	stats := orch.Stats()
	handle := orch.Handle()

	corpusLine := "corpus: none"
	if handle.Present {
		corpusLine = fmt.Sprintf("corpus: %d chunks (%s)",
			handle.ChunkCount, strings.Join(handle.FileNames, ", "))
	}

	card := fmt.Sprintf("direct: %d\nretrieval: %d\nsearch: %d\ntotal: %d\n%s",
		stats.Direct, stats.Retrieval, stats.Search, stats.Total(), corpusLine)
	fmt.Println(statsStyle.Render(card))
}
