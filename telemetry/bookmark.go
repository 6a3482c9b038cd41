package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstDelivery  BookmarkType = "first_delivery"
	BookmarkTrailFormed    BookmarkType = "trail_formed"
	BookmarkTrailCollapse  BookmarkType = "trail_collapse"
	BookmarkFoodExhausted  BookmarkType = "food_exhausted"
	BookmarkSteadyForaging BookmarkType = "steady_foraging"
)

// steadyWindowsToTrigger is the run of steady windows before steady_foraging fires.
const steadyWindowsToTrigger = 5

// Bookmark marks a notable moment in a run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using logger.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches window stats for colony milestones.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	delivered      bool    // a delivery has been seen
	foodSeen       bool    // food has been present at some window end
	foundPeak      float64 // peak found-trail mass since the last collapse
	steadyWindows  int     // consecutive windows with steady deliveries
	steadyReported bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindowsToTrigger {
		historySize = steadyWindowsToTrigger
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstDelivery(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailFormed(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFoodExhausted(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkSteadyForaging(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.FoundMass > bd.foundPeak {
		bd.foundPeak = stats.FoundMass
	}
	if stats.FoodSources > 0 {
		bd.foodSeen = true
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstDelivery(stats WindowStats) *Bookmark {
	if bd.delivered || stats.Deliveries == 0 {
		return nil
	}
	bd.delivered = true
	return &Bookmark{
		Type:        BookmarkFirstDelivery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First %d deliveries within window ending at tick %d", stats.Deliveries, stats.WindowEndTick),
	}
}

// checkTrailFormed fires when deliveries jump above twice the rolling average.
func (bd *BookmarkDetector) checkTrailFormed(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Deliveries
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Deliveries) > avg*2 && stats.Deliveries >= 5 {
		return &Bookmark{
			Type:        BookmarkTrailFormed,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Deliveries %d are %.1fx average (%.1f)", stats.Deliveries, float64(stats.Deliveries)/avg, avg),
		}
	}
	return nil
}

// checkTrailCollapse fires when found-trail mass drops below half its peak.
func (bd *BookmarkDetector) checkTrailCollapse(stats WindowStats) *Bookmark {
	if bd.foundPeak <= 0 {
		return nil
	}
	if stats.FoundMass >= bd.foundPeak*0.5 {
		return nil
	}

	oldPeak := bd.foundPeak
	bd.foundPeak = stats.FoundMass
	return &Bookmark{
		Type:        BookmarkTrailCollapse,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Found-trail mass fell from %.1f to %.1f", oldPeak, stats.FoundMass),
	}
}

func (bd *BookmarkDetector) checkFoodExhausted(stats WindowStats) *Bookmark {
	if !bd.foodSeen || stats.FoodSources > 0 {
		return nil
	}
	bd.foodSeen = false
	return &Bookmark{
		Type:        BookmarkFoodExhausted,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("All food collected, %d delivered in total", stats.Delivered),
	}
}

// checkSteadyForaging fires once deliveries have held steady for several windows.
func (bd *BookmarkDetector) checkSteadyForaging(stats WindowStats) *Bookmark {
	if stats.Deliveries == 0 {
		bd.steadyWindows = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	if bd.historyFull {
		// Circular buffer: take the four most recent in order
		recent = make([]WindowStats, 0, 4)
		for i := 4; i >= 1; i-- {
			recent = append(recent, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
		}
	}

	deliveries := make([]float64, len(recent))
	for i, h := range recent {
		deliveries[i] = float64(h.Deliveries)
	}
	mean, variance := stat.PopMeanVariance(deliveries, nil)

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.steadyWindows++
	} else {
		bd.steadyWindows = 0
	}

	if bd.steadyWindows == steadyWindowsToTrigger && !bd.steadyReported {
		bd.steadyReported = true
		return &Bookmark{
			Type:        BookmarkSteadyForaging,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady foraging at %.1f deliveries per window", mean),
		}
	}
	return nil
}
