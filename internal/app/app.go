package app

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"podplay/internal/config"
	"podplay/internal/directory"
	"podplay/internal/domain"
	"podplay/internal/feeds"
	"podplay/internal/format"
	"podplay/internal/itunes"
	"podplay/internal/playback"
	"podplay/internal/player"
	"podplay/internal/progress"
	"podplay/internal/repository"
	"podplay/internal/subscriptions"
)

type commandHandler func(context.Context, []string) (CommandResult, error)

type command struct {
	usage   string
	summary string
	handler commandHandler
}

// PodcastItem is a numbered show row for display. The number is what the user
// types to select it in follow-up commands.
type PodcastItem struct {
	Index        int
	Podcast      domain.Podcast
	IsSubscribed bool
}

// EpisodeItem is a numbered episode row for display.
type EpisodeItem struct {
	Index   int
	Episode domain.Episode
}

// QueueItem is a numbered queue row; Current marks the active entry.
type QueueItem struct {
	Index   int
	Episode domain.Episode
	Current bool
}

type CommandResult struct {
	Message       string
	Quit          bool
	Podcasts      []PodcastItem
	PodcastsTitle string
	Episodes      []EpisodeItem
	EpisodesTitle string
	Queue         []QueueItem
}

var (
	ErrNoSubscriptionsToExport = subscriptions.ErrNoSubscriptionsToExport
	ErrNoSubscriptionsInOPML   = subscriptions.ErrNoSubscriptionsInOPML
)

type OPMLImportResult = subscriptions.ImportResult

type App struct {
	config     config.Config
	configPath string
	db         *sql.DB
	httpClient *http.Client
	commands   map[string]*command

	directory     *directory.Service
	subscriptions *subscriptions.Service
	engine        *playback.Engine
	store         *repository.Store
	tracker       *progress.Tracker

	// Last listed shows and episodes, addressable by number in follow-up
	// commands like "episodes 2" and "play 5".
	lastPodcasts []domain.Podcast
	lastShow     domain.Podcast
	lastEpisodes []domain.Episode
}

type Dependencies struct {
	HTTPClient *http.Client
	ITunes     *itunes.Client
	Element    player.Element
}

func New(ctx context.Context, cfg config.Config, configPath string, db *sql.DB) (*App, error) {
	return NewWithDependencies(ctx, cfg, configPath, db, Dependencies{})
}

func NewWithDependencies(ctx context.Context, cfg config.Config, configPath string, db *sql.DB, deps Dependencies) (*App, error) {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.TLSVerify},
		}
		if proxyURL := strings.TrimSpace(cfg.Proxy); proxyURL != "" {
			if parsed, err := url.Parse(proxyURL); err == nil {
				transport.Proxy = http.ProxyURL(parsed)
			}
		}
		httpClient = &http.Client{Timeout: 15 * time.Second, Transport: transport}
	}

	itunesClient := deps.ITunes
	if itunesClient == nil {
		itunesClient = itunes.NewClient(httpClient, "")
	}

	parser := feeds.NewParser(httpClient, cfg.UserAgent)
	store := repository.New(db)

	tracker, err := progress.NewTracker(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	element := deps.Element
	if element == nil {
		element = player.NewBeepElement(httpClient, cfg.UserAgent, "")
	}

	startVolume := float64(cfg.Volume) / 100
	engine := playback.New(element, tracker, playback.Options{
		Volume: &startVolume,
		Speed:  cfg.PlaybackSpeed,
	})

	application := &App{
		config:        cfg,
		configPath:    configPath,
		db:            db,
		httpClient:    httpClient,
		commands:      make(map[string]*command),
		directory:     directory.NewService(itunesClient, parser),
		subscriptions: subscriptions.NewService(store, parser, itunesClient),
		engine:        engine,
		store:         store,
		tracker:       tracker,
	}
	application.registerCommands()

	return application, nil
}

func (a *App) Config() config.Config {
	return a.config
}

// Engine exposes the playback engine for the UI's status bar and event
// subscription.
func (a *App) Engine() *playback.Engine {
	return a.engine
}

func (a *App) CommandNames() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *App) Close() error {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) Execute(ctx context.Context, input string) (CommandResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return CommandResult{}, nil
	}

	args, err := shellquote.Split(input)
	if err != nil {
		return CommandResult{}, err
	}
	if len(args) == 0 {
		return CommandResult{}, nil
	}

	cmdName := strings.ToLower(args[0])
	cmd, ok := a.commands[cmdName]
	if !ok {
		return CommandResult{Message: fmt.Sprintf("unknown command: %s", args[0])}, nil
	}

	return cmd.handler(ctx, args[1:])
}

func (a *App) registerCommands() {
	a.registerCommand("search", "search <query>", "Search the podcast directory", a.searchCommand, "s")
	a.registerCommand("subs", "subs", "List podcast subscriptions", a.subsCommand, "list", "ls")
	a.registerCommand("episodes", "episodes <show#>", "List episodes of a show from the last listing", a.episodesCommand, "e")
	a.registerCommand("subscribe", "subscribe <show#>", "Subscribe to a show from the last listing", a.subscribeCommand, "sub")
	a.registerCommand("unsubscribe", "unsubscribe <show#>", "Unsubscribe from a show", a.unsubscribeCommand, "unsub")
	a.registerCommand("play", "play <episode#>", "Play an episode from the last episode listing", a.playCommand)
	a.registerCommand("info", "info <episode#>", "Show episode details from the last listing", a.infoCommand, "i")
	a.registerCommand("queue", "queue [add <episode#> | rm <queue#> | clear]", "Show or edit the playback queue", a.queueCommand, "q")
	a.registerCommand("toggle", "toggle", "Toggle play/pause", a.toggleCommand, "pause", "resume", "p")
	a.registerCommand("next", "next", "Play the next queued episode", a.nextCommand, "n")
	a.registerCommand("prev", "prev", "Play the previous queued episode", a.prevCommand, "previous")
	a.registerCommand("seek", "seek <mm:ss|seconds>", "Seek to an absolute position", a.seekCommand)
	a.registerCommand("skip", "skip [+/-seconds]", "Skip forward or backward", a.skipCommand)
	a.registerCommand("vol", "vol <0-100>", "Set playback volume", a.volCommand, "volume")
	a.registerCommand("speed", "speed [rate]", "Set or cycle playback speed", a.speedCommand)
	a.registerCommand("status", "status", "Show player status", a.statusCommand, "st")
	a.registerCommand("import", "import <file>", "Import subscriptions from an OPML file", a.importCommand)
	a.registerCommand("export", "export <file>", "Export subscriptions to an OPML file", a.exportCommand)
	a.registerCommand("reset", "reset", "Clear subscriptions, saved positions and the queue", a.resetCommand)
	a.registerCommand("config", "config [show|edit]", "View or edit application configuration", a.configCommand)
	a.registerCommand("help", "help", "List available commands", a.helpCommand, "h", "?")
	a.registerCommand("exit", "exit", "Exit the application", a.exitCommand, "quit")
}

func (a *App) registerCommand(name, usage, summary string, handler commandHandler, aliases ...string) {
	cmd := &command{usage: usage, summary: summary, handler: handler}
	names := append([]string{name}, aliases...)
	for _, alias := range names {
		a.commands[alias] = cmd
	}
}

func (a *App) searchCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) == 0 {
		return CommandResult{Message: "Usage: search <query>"}, nil
	}

	term := strings.Join(args, " ")
	results, err := a.directory.Search(ctx, term, a.config.SearchLimit)
	if err != nil {
		return CommandResult{}, err
	}
	if len(results) == 0 {
		return CommandResult{Message: "No podcasts found."}, nil
	}

	a.lastPodcasts = results
	items := make([]PodcastItem, len(results))
	for i, p := range results {
		subscribed, _, err := a.subscriptions.IsSubscribed(ctx, p.ID)
		if err != nil {
			return CommandResult{}, err
		}
		items[i] = PodcastItem{Index: i + 1, Podcast: p, IsSubscribed: subscribed}
	}

	return CommandResult{Podcasts: items, PodcastsTitle: fmt.Sprintf("Results for %q", term)}, nil
}

func (a *App) subsCommand(ctx context.Context, args []string) (CommandResult, error) {
	subs, err := a.subscriptions.List(ctx)
	if err != nil {
		return CommandResult{}, err
	}
	if len(subs) == 0 {
		return CommandResult{Message: "No subscriptions yet."}, nil
	}

	podcasts := make([]domain.Podcast, len(subs))
	items := make([]PodcastItem, len(subs))
	for i, sub := range subs {
		podcasts[i] = domain.Podcast{
			ID:         sub.ID,
			Title:      sub.Title,
			Publisher:  sub.Publisher,
			ArtworkURL: sub.ArtworkURL,
			FeedURL:    sub.FeedURL,
		}
		items[i] = PodcastItem{Index: i + 1, Podcast: podcasts[i], IsSubscribed: true}
	}
	a.lastPodcasts = podcasts

	return CommandResult{Podcasts: items, PodcastsTitle: "Subscriptions"}, nil
}

func (a *App) episodesCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: episodes <show#>"}, nil
	}

	podcast, msg := a.resolvePodcast(args[0])
	if msg != "" {
		return CommandResult{Message: msg}, nil
	}

	if strings.TrimSpace(podcast.FeedURL) == "" {
		looked, err := a.directory.Lookup(ctx, podcast.ID)
		if err != nil {
			return CommandResult{}, err
		}
		podcast = looked
	}

	podcast, err := a.directory.Episodes(ctx, podcast)
	if err != nil {
		return CommandResult{}, err
	}
	if len(podcast.Episodes) == 0 {
		return CommandResult{Message: "No playable episodes in this feed."}, nil
	}

	a.lastShow = podcast
	a.lastEpisodes = podcast.Episodes

	limit := a.config.MaxEpisodes
	if limit <= 0 || limit > len(podcast.Episodes) {
		limit = len(podcast.Episodes)
	}
	items := make([]EpisodeItem, limit)
	for i := 0; i < limit; i++ {
		items[i] = EpisodeItem{Index: i + 1, Episode: podcast.Episodes[i]}
	}

	return CommandResult{Episodes: items, EpisodesTitle: podcast.Title}, nil
}

func (a *App) subscribeCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: subscribe <show#>"}, nil
	}

	podcast, msg := a.resolvePodcast(args[0])
	if msg != "" {
		return CommandResult{Message: msg}, nil
	}

	sub, err := a.subscriptions.Subscribe(ctx, podcast)
	if err != nil {
		switch {
		case errors.Is(err, subscriptions.ErrAlreadySubscribed):
			return CommandResult{Message: fmt.Sprintf("Already subscribed to %s.", sub.Title)}, nil
		case errors.Is(err, subscriptions.ErrMissingPodcastID):
			return CommandResult{Message: "Podcast ID cannot be empty."}, nil
		default:
			return CommandResult{}, err
		}
	}
	return CommandResult{Message: fmt.Sprintf("Subscribed to %s.", sub.Title)}, nil
}

func (a *App) unsubscribeCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: unsubscribe <show#>"}, nil
	}

	podcast, msg := a.resolvePodcast(args[0])
	if msg != "" {
		return CommandResult{Message: msg}, nil
	}

	removed, err := a.subscriptions.Unsubscribe(ctx, podcast.ID)
	if err != nil {
		return CommandResult{}, err
	}
	if !removed {
		return CommandResult{Message: "No subscription found for that show."}, nil
	}
	return CommandResult{Message: fmt.Sprintf("Unsubscribed from %s.", podcast.Title)}, nil
}

func (a *App) playCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: play <episode#>"}, nil
	}

	episode, msg := a.resolveEpisode(args[0])
	if msg != "" {
		return CommandResult{Message: msg}, nil
	}

	a.engine.PlayEpisode(episode)
	return CommandResult{Message: fmt.Sprintf("Playing %s.", episode.Title)}, nil
}

func (a *App) infoCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: info <episode#>"}, nil
	}

	episode, msg := a.resolveEpisode(args[0])
	if msg != "" {
		return CommandResult{Message: msg}, nil
	}

	lines := []string{episode.Title}
	if episode.PodcastTitle != "" {
		lines = append(lines, episode.PodcastTitle)
	}
	if episode.HasPublish {
		lines = append(lines, episode.PublishedAt.Format("2 Jan 2006"))
	}
	if desc := truncateLines(episode.Description, a.config.MaxEpisodeDescriptionLines); desc != "" {
		lines = append(lines, "", desc)
	}
	return CommandResult{Message: strings.Join(lines, "\n")}, nil
}

// truncateLines caps a description at max lines, marking the cut.
func truncateLines(text string, max int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if max > 0 && len(lines) > max {
		lines = append(lines[:max], "…")
	}
	return strings.Join(lines, "\n")
}

func (a *App) queueCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) == 0 {
		return a.queueListing(), nil
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) != 2 {
			return CommandResult{Message: "Usage: queue add <episode#>"}, nil
		}
		episode, msg := a.resolveEpisode(args[1])
		if msg != "" {
			return CommandResult{Message: msg}, nil
		}
		a.engine.AddToQueue(episode)
		return CommandResult{Message: fmt.Sprintf("Queued %s.", episode.Title)}, nil
	case "rm", "remove":
		if len(args) != 2 {
			return CommandResult{Message: "Usage: queue rm <queue#>"}, nil
		}
		index, err := strconv.Atoi(args[1])
		if err != nil || index < 1 || index > a.engine.QueueLen() {
			return CommandResult{Message: "No queue entry with that number."}, nil
		}
		a.engine.RemoveFromQueue(index - 1)
		return a.queueListing(), nil
	case "clear":
		a.engine.ClearQueue()
		return CommandResult{Message: "Queue cleared."}, nil
	default:
		return CommandResult{Message: "Usage: queue [add <episode#> | rm <queue#> | clear]"}, nil
	}
}

func (a *App) queueListing() CommandResult {
	episodes := a.engine.Queue()
	if len(episodes) == 0 {
		return CommandResult{Message: "Queue is empty."}
	}
	currentIndex := a.engine.CurrentIndex()
	items := make([]QueueItem, len(episodes))
	for i, ep := range episodes {
		items[i] = QueueItem{Index: i + 1, Episode: ep, Current: i == currentIndex}
	}
	return CommandResult{Queue: items}
}

func (a *App) toggleCommand(_ context.Context, _ []string) (CommandResult, error) {
	if a.engine.CurrentEpisode() == nil {
		return CommandResult{Message: "Nothing selected to play."}, nil
	}
	a.engine.TogglePlayPause()
	return CommandResult{}, nil
}

func (a *App) nextCommand(_ context.Context, _ []string) (CommandResult, error) {
	a.engine.PlayNext()
	return CommandResult{}, nil
}

func (a *App) prevCommand(_ context.Context, _ []string) (CommandResult, error) {
	a.engine.PlayPrevious()
	return CommandResult{}, nil
}

func (a *App) seekCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: seek <mm:ss|seconds>"}, nil
	}
	seconds, err := parseTimestamp(args[0])
	if err != nil {
		return CommandResult{Message: err.Error()}, nil
	}
	if a.engine.CurrentEpisode() == nil {
		return CommandResult{Message: "Nothing playing."}, nil
	}
	a.engine.Seek(seconds)
	return CommandResult{}, nil
}

func (a *App) skipCommand(_ context.Context, args []string) (CommandResult, error) {
	delta := float64(a.config.SkipSeconds)
	if len(args) == 1 {
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return CommandResult{Message: "Usage: skip [+/-seconds]"}, nil
		}
		delta = parsed
	} else if len(args) > 1 {
		return CommandResult{Message: "Usage: skip [+/-seconds]"}, nil
	}
	if a.engine.CurrentEpisode() == nil {
		return CommandResult{Message: "Nothing playing."}, nil
	}
	a.engine.SkipTime(delta)
	return CommandResult{}, nil
}

func (a *App) volCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: fmt.Sprintf("Volume: %d%%", int(a.engine.Volume()*100))}, nil
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || level < 0 || level > 100 {
		return CommandResult{Message: "Usage: vol <0-100>"}, nil
	}
	a.engine.SetVolume(float64(level) / 100)
	return CommandResult{Message: fmt.Sprintf("Volume: %d%%", level)}, nil
}

func (a *App) speedCommand(_ context.Context, args []string) (CommandResult, error) {
	if len(args) == 0 {
		next := a.engine.CycleSpeed()
		return CommandResult{Message: fmt.Sprintf("Speed: %.2gx", next)}, nil
	}
	rate, err := strconv.ParseFloat(args[0], 64)
	if err != nil || rate < 0.5 || rate > 2.0 {
		return CommandResult{Message: "Usage: speed [0.5-2.0]"}, nil
	}
	a.engine.SetPlaybackSpeed(rate)
	return CommandResult{Message: fmt.Sprintf("Speed: %.2gx", rate)}, nil
}

func (a *App) statusCommand(_ context.Context, _ []string) (CommandResult, error) {
	current := a.engine.CurrentEpisode()
	if current == nil {
		return CommandResult{Message: "Nothing playing."}, nil
	}

	state := "Paused"
	if a.engine.IsPlaying() {
		state = "Playing"
	}
	msg := fmt.Sprintf("%s: %s\n%s  speed %.2gx  vol %d%%  queue %d",
		state,
		current.Title,
		format.Clock(a.engine.Position(), a.engine.Duration()),
		a.engine.PlaybackSpeed(),
		int(a.engine.Volume()*100),
		a.engine.QueueLen(),
	)
	return CommandResult{Message: msg}, nil
}

func (a *App) importCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: import <file>"}, nil
	}
	result, err := a.ImportOPML(ctx, args[0])
	if err != nil {
		return CommandResult{}, err
	}
	msg := fmt.Sprintf("Imported %d subscriptions", result.Imported)
	if result.Skipped > 0 {
		msg += fmt.Sprintf(", skipped %d", result.Skipped)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf(", %d errors", len(result.Errors))
	}
	return CommandResult{Message: msg + "."}, nil
}

func (a *App) exportCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) != 1 {
		return CommandResult{Message: "Usage: export <file>"}, nil
	}
	count, err := a.ExportOPML(ctx, args[0])
	if err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Message: fmt.Sprintf("Exported %d subscriptions.", count)}, nil
}

func (a *App) resetCommand(ctx context.Context, _ []string) (CommandResult, error) {
	a.engine.ClearQueue()
	if err := a.store.Reset(ctx); err != nil {
		return CommandResult{}, err
	}
	a.tracker.Forget()
	a.directory.Reset()
	a.lastPodcasts = nil
	a.lastShow = domain.Podcast{}
	a.lastEpisodes = nil
	log.Println("application state reset")
	return CommandResult{Message: "Subscriptions, saved positions and queue cleared."}, nil
}

func (a *App) configCommand(ctx context.Context, args []string) (CommandResult, error) {
	if len(args) == 0 {
		msg := "Usage: config [show|edit]\nKeys: " + strings.Join(config.EditableKeys(), ", ")
		return CommandResult{Message: msg}, nil
	}
	switch strings.ToLower(args[0]) {
	case "show":
		data, err := yaml.Marshal(a.config)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Message: string(data)}, nil
	default:
		return a.editConfig(ctx)
	}
}

func (a *App) editConfig(ctx context.Context) (CommandResult, error) {
	updated, err := config.EditInteractive(ctx, a.config)
	if err != nil {
		return CommandResult{}, err
	}
	if err := config.Save(a.configPath, updated); err != nil {
		return CommandResult{}, err
	}
	a.config = updated
	a.engine.SetVolume(float64(updated.Volume) / 100)
	a.engine.SetPlaybackSpeed(updated.PlaybackSpeed)
	log.Println("configuration updated")
	return CommandResult{Message: "Configuration saved."}, nil
}

func (a *App) helpCommand(_ context.Context, _ []string) (CommandResult, error) {
	seen := make(map[*command]bool)
	lines := make([]string, 0, len(a.commands))
	for _, name := range a.CommandNames() {
		cmd := a.commands[name]
		if seen[cmd] {
			continue
		}
		seen[cmd] = true
		lines = append(lines, fmt.Sprintf("%-44s %s", cmd.usage, cmd.summary))
	}
	return CommandResult{Message: strings.Join(lines, "\n")}, nil
}

func (a *App) exitCommand(_ context.Context, _ []string) (CommandResult, error) {
	return CommandResult{Quit: true}, nil
}

func (a *App) ExportOPML(ctx context.Context, filePath string) (int, error) {
	return a.subscriptions.ExportOPML(ctx, filePath)
}

func (a *App) ImportOPML(ctx context.Context, filePath string) (OPMLImportResult, error) {
	return a.subscriptions.ImportOPML(ctx, filePath)
}

// resolvePodcast maps a 1-based listing number onto the last listed shows.
func (a *App) resolvePodcast(arg string) (domain.Podcast, string) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return domain.Podcast{}, "Expected a show number from the last listing."
	}
	if len(a.lastPodcasts) == 0 {
		return domain.Podcast{}, "Nothing listed yet. Run search or subs first."
	}
	if index < 1 || index > len(a.lastPodcasts) {
		return domain.Podcast{}, fmt.Sprintf("No show number %d in the last listing.", index)
	}
	return a.lastPodcasts[index-1], ""
}

// resolveEpisode maps a 1-based listing number onto the last episode listing,
// stamping the show's display fields onto the result.
func (a *App) resolveEpisode(arg string) (domain.Episode, string) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return domain.Episode{}, "Expected an episode number from the last listing."
	}
	if len(a.lastEpisodes) == 0 {
		return domain.Episode{}, "No episodes listed yet. Run episodes <show#> first."
	}
	if index < 1 || index > len(a.lastEpisodes) {
		return domain.Episode{}, fmt.Sprintf("No episode number %d in the last listing.", index)
	}
	episode := a.lastEpisodes[index-1].WithShow(a.lastShow.Title, a.lastShow.ArtworkURL)
	return episode, ""
}

// parseTimestamp accepts "h:mm:ss", "m:ss" or plain seconds.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("timestamp required")
	}

	if !strings.Contains(value, ":") {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil || seconds < 0 {
			return 0, errors.New("timestamp must be a positive number of seconds")
		}
		return seconds, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, errors.New("timestamp must be h:mm:ss, m:ss or seconds")
	}
	total := 0.0
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, errors.New("timestamp must be h:mm:ss, m:ss or seconds")
		}
		total = total*60 + n
	}
	return total, nil
}
