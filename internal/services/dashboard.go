package services

import (
	"context"
	"math"
	"time"

	"judicial-archive/internal/models"
	"judicial-archive/internal/utils"
)

const (
	DefaultRecentDocuments = 10
	MaxRecentDocuments     = 100
	ActivityCalendarDays   = 90

	calendarKeyLayout = "2006-01-02"
)

type DashboardStats struct {
	TotalCases    int `json:"totalCases"`
	ProcessedDocs int `json:"processedDocs"`
	PendingDocs   int `json:"pendingDocs"`
	ArchivedCases int `json:"archivedCases"`
}

type Activity struct {
	Action   string          `json:"action"`
	Document string          `json:"document"`
	Date     time.Time       `json:"date"`
	Category models.Category `json:"category"`
}

type UserProgress struct {
	DocumentsCreated      int                         `json:"documentsCreated"`
	DocumentsThisMonth    int                         `json:"documentsThisMonth"`
	DocumentsThisWeek     int                         `json:"documentsThisWeek"`
	AverageProcessingTime float64                     `json:"averageProcessingTime"`
	LastActivity          *time.Time                  `json:"lastActivity"`
	CategoryBreakdown     map[models.Category]float64 `json:"categoryBreakdown"`
	RecentActivity        []Activity                  `json:"recentActivity"`
}

type ProfileStatistics struct {
	TotalDocuments        int                         `json:"totalDocuments"`
	DocumentsThisMonth    int                         `json:"documentsThisMonth"`
	DocumentsThisWeek     int                         `json:"documentsThisWeek"`
	AverageProcessingTime float64                     `json:"averageProcessingTime"`
	CompletionRate        float64                     `json:"completionRate"`
	CategoryProgress      map[models.Category]float64 `json:"categoryProgress"`
}

type Profile struct {
	User             models.User       `json:"user"`
	Statistics       ProfileStatistics `json:"statistics"`
	ActivityCalendar map[string]int    `json:"activityCalendar"`
	RecentActivities []Activity        `json:"recentActivities"`
}

// Stats counts documents by status. A non-empty userID restricts the count
// to that creator.
func (s *ArchiveService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	docs, err := s.FindDocuments(ctx, DocumentQuery{CreatedBy: userID})
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{TotalCases: len(docs)}
	for _, d := range docs {
		switch d.Status {
		case models.StatusActive:
			stats.ProcessedDocs++
		case models.StatusPending:
			stats.PendingDocs++
		case models.StatusArchived:
			stats.ArchivedCases++
		}
	}
	return stats, nil
}

// RecentDocuments returns the newest documents, joined. limit is clamped to
// [1, MaxRecentDocuments] with DefaultRecentDocuments for zero.
func (s *ArchiveService) RecentDocuments(ctx context.Context, limit int, userID string) ([]models.DocumentDetails, error) {
	limit = utils.ClampLimit(limit, DefaultRecentDocuments, MaxRecentDocuments)
	docs, err := s.FindDocuments(ctx, DocumentQuery{CreatedBy: userID})
	if err != nil {
		return nil, err
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return s.newJoiner().join(ctx, docs)
}

// userDocuments loads a user's documents newest first, failing with
// ErrNotFound for unknown users.
func (s *ArchiveService) userDocuments(ctx context.Context, userID string) (*models.User, []models.Document, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.FindDocuments(ctx, DocumentQuery{CreatedBy: userID})
	if err != nil {
		return nil, nil, err
	}
	return u, docs, nil
}

func (s *ArchiveService) UserProgress(ctx context.Context, userID string) (*UserProgress, error) {
	_, docs, err := s.userDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &UserProgress{
		DocumentsCreated:      len(docs),
		DocumentsThisMonth:    countSince(docs, startOfMonth(now)),
		DocumentsThisWeek:     countSince(docs, startOfWeek(now)),
		AverageProcessingTime: averageProcessingMinutes(docs),
		CategoryBreakdown:     categoryCompletion(docs),
		RecentActivity:        s.activities(docs),
	}
	if len(docs) > 0 {
		last := docs[0].CreatedAt
		p.LastActivity = &last
	}
	return p, nil
}

func (s *ArchiveService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, docs, err := s.userDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &Profile{
		User: *u,
		Statistics: ProfileStatistics{
			TotalDocuments:        len(docs),
			DocumentsThisMonth:    countSince(docs, startOfMonth(now)),
			DocumentsThisWeek:     countSince(docs, startOfWeek(now)),
			AverageProcessingTime: averageProcessingMinutes(docs),
			CompletionRate:        completionRate(docs),
			CategoryProgress:      categoryCompletion(docs),
		},
		ActivityCalendar: activityCalendar(docs, now, ActivityCalendarDays),
		RecentActivities: s.activities(docs),
	}, nil
}

// ActivityCalendar counts a user's document creations per local calendar
// day over the trailing window ending today.
func (s *ArchiveService) ActivityCalendar(ctx context.Context, userID string) (map[string]int, error) {
	_, docs, err := s.userDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return activityCalendar(docs, s.now(), ActivityCalendarDays), nil
}

// activities expects docs newest first.
func (s *ArchiveService) activities(docs []models.Document) []Activity {
	n := min(len(docs), s.recent)
	out := make([]Activity, 0, n)
	for _, d := range docs[:n] {
		out = append(out, Activity{
			Action:   "document_created",
			Document: d.Title,
			Date:     d.CreatedAt,
			Category: d.Category,
		})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func countSince(docs []models.Document, since time.Time) int {
	n := 0
	for _, d := range docs {
		if !d.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

// averageProcessingMinutes is the mean time from creation to last update
// over documents that have left the pending state, rounded to 0.1.
func averageProcessingMinutes(docs []models.Document) float64 {
	var total time.Duration
	n := 0
	for _, d := range docs {
		if d.Status == models.StatusPending {
			continue
		}
		total += d.UpdatedAt.Sub(d.CreatedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(total.Minutes() / float64(n))
}

func completionRate(docs []models.Document) float64 {
	if len(docs) == 0 {
		return 0
	}
	active := 0
	for _, d := range docs {
		if d.Status == models.StatusActive {
			active++
		}
	}
	return round1(float64(active) / float64(len(docs)) * 100)
}

// categoryCompletion gives, per category, the percentage of documents that
// are active. Every category is present.
func categoryCompletion(docs []models.Document) map[models.Category]float64 {
	total := make(map[models.Category]int)
	active := make(map[models.Category]int)
	for _, d := range docs {
		total[d.Category]++
		if d.Status == models.StatusActive {
			active[d.Category]++
		}
	}
	out := make(map[models.Category]float64, len(models.AllCategories))
	for _, c := range models.AllCategories {
		if total[c] == 0 {
			out[c] = 0
			continue
		}
		out[c] = round1(float64(active[c]) / float64(total[c]) * 100)
	}
	return out
}

func activityCalendar(docs []models.Document, now time.Time, days int) map[string]int {
	loc := now.Location()
	end := startOfDay(now).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)
	out := make(map[string]int)
	for _, d := range docs {
		created := d.CreatedAt.In(loc)
		if created.Before(start) || !created.Before(end) {
			continue
		}
		out[created.Format(calendarKeyLayout)]++
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
