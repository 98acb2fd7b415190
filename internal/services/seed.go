package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"judicial-archive/internal/models"
	"judicial-archive/pkg/crypto"
)

type SeedOptions struct {
	// Rand drives every random choice; a fixed seed gives a reproducible
	// archive. Nil uses a time based seed.
	Rand   *rand.Rand
	Hasher crypto.Hasher
}

type SeedResult struct {
	Skipped   bool `json:"skipped"`
	Users     int  `json:"users"`
	Blocks    int  `json:"blocks"`
	Rows      int  `json:"rows"`
	Sections  int  `json:"sections"`
	Documents int  `json:"documents"`
	Papers    int  `json:"papers"`
}

type demoUser struct {
	username, password, email, fullName string
	role                                 models.Role
}

var (
	demoUsers = []demoUser{
		{"admin", "admin123", "admin@cour-appel.ma", "المسؤول الرئيسي", models.RoleAdmin},
		{"archivist", "arch123", "archivist@cour-appel.ma", "أمينة بنعلي", models.RoleArchivist},
	}
	demoBlocks   = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	demoTitles   = []string{"حكم في القضية رقم", "محضر جلسة استماع", "وثائق مبررة للعقد التجاري", "طلب طلاق - ملف عائلي", "قرار استئناف", "شكوى جنائية"}
	demoPapers   = []string{"الوثيقة الأساسية", "مرفقات القضية", "شهادات الشهود", "التقارير الطبية", "المراسلات القانونية"}
	demoFileType = []string{"application/pdf", "application/msword", "image/jpeg"}
)

const (
	demoRows          = 3
	demoSections      = 4
	demoHistoryDays   = 30
	demoFilledPercent = 70
)

// Seed fills an empty store with demo users and a populated filing
// hierarchy. A store that already has users is left untouched.
func (s *ArchiveService) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &SeedResult{Skipped: true}, nil
	}

	rng := opts.Rand
	if rng == nil {
		seed := uint64(s.now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	res := &SeedResult{}
	now := s.now()

	creators := make([]string, 0, len(demoUsers))
	for _, du := range demoUsers {
		hash, err := opts.Hasher.Hash(du.password)
		if err != nil {
			return nil, err
		}
		u := &models.User{
			Username:     du.username,
			PasswordHash: hash,
			Email:        du.email,
			FullName:     du.fullName,
			Role:         du.role,
			IsActive:     true,
			CreatedAt:    now,
		}
		if err := s.store.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", du.username, err)
		}
		creators = append(creators, u.ID)
		res.Users++
	}

	for _, blockLabel := range demoBlocks {
		block := &models.Block{Label: blockLabel, CreatedAt: now}
		if err := s.store.CreateBlock(ctx, block); err != nil {
			return nil, fmt.Errorf("seed block %s: %w", blockLabel, err)
		}
		res.Blocks++

		for r := 1; r <= demoRows; r++ {
			row := &models.Row{BlockID: block.ID, Label: strconv.Itoa(r), CreatedAt: now}
			if err := s.store.CreateRow(ctx, row); err != nil {
				return nil, fmt.Errorf("seed row %s.%d: %w", blockLabel, r, err)
			}
			res.Rows++

			for sn := 1; sn <= demoSections; sn++ {
				sec := &models.Section{RowID: row.ID, Label: strconv.Itoa(sn), CreatedAt: now}
				if err := s.store.CreateSection(ctx, sec); err != nil {
					return nil, fmt.Errorf("seed section %s.%d.%d: %w", blockLabel, r, sn, err)
				}
				res.Sections++

				if rng.IntN(100) >= demoFilledPercent {
					continue
				}
				for range rng.IntN(3) + 1 {
					papers, err := s.seedDocument(ctx, rng, sec.ID, creators, now)
					if err != nil {
						return nil, err
					}
					res.Documents++
					res.Papers += papers
				}
			}
		}
	}

	s.log.Info("demo data seeded")
	return res, nil
}

func (s *ArchiveService) seedDocument(ctx context.Context, rng *rand.Rand, sectionID string, creators []string, now time.Time) (int, error) {
	ref, err := s.AllocateReference(ctx, sectionID)
	if err != nil {
		return 0, err
	}

	created := now.Add(-time.Duration(rng.Int64N(int64(demoHistoryDays * 24 * time.Hour))))
	updated := created.Add(time.Duration(rng.Int64N(int64(72 * time.Hour))))
	if updated.After(now) {
		updated = now
	}
	priority := "متوسطة"
	if rng.IntN(2) == 0 {
		priority = "عالية"
	}

	doc := &models.Document{
		SectionID: sectionID,
		Reference: ref,
		Title:     demoTitles[rng.IntN(len(demoTitles))] + " " + ref,
		Category:  models.AllCategories[rng.IntN(len(models.AllCategories))],
		Status:    models.AllStatuses[rng.IntN(len(models.AllStatuses))],
		Metadata: map[string]any{
			"priority": priority,
			"court":    "محكمة الاستئناف بالرباط",
		},
		CreatedBy: creators[rng.IntN(len(creators))],
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("seed document %s: %w", ref, err)
	}

	n := rng.IntN(4) + 2
	for i := 1; i <= n; i++ {
		content := "محتوى الوثيقة..."
		fileType := demoFileType[rng.IntN(len(demoFileType))]
		size := rng.Int64N(4_900_000) + 100_000
		paper := &models.Paper{
			DocumentID: doc.ID,
			Title:      fmt.Sprintf("%s %d", demoPapers[rng.IntN(len(demoPapers))], i),
			Content:    &content,
			FileType:   &fileType,
			FileSize:   &size,
			CreatedAt:  created.Add(time.Duration(i) * time.Minute),
		}
		if err := s.store.CreatePaper(ctx, paper); err != nil {
			return 0, fmt.Errorf("seed paper for %s: %w", ref, err)
		}
	}
	return n, nil
}
