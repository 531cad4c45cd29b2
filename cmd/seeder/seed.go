package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker"
)

var (
	genders   = []string{"남자", "여자"}
	locations = []string{"서울", "부산", "인천", "대구", "대전", "광주"}
	interests = []string{"여행", "운동", "독서", "영화", "요리", "음악", "게임", "등산", "사진", "카페"}
	names     = []string{"민수", "지은", "서연", "도윤", "하준", "수아", "지호", "예린", "현우", "유진"}
)

// batchSize matches the per-request limit of the batch service.
const batchSize = 100

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert random demo users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetUint64("seed")

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		c, err := connect(ctx, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		created, failed := 0, 0
		users := generate(count, seed)
		for start := 0; start < len(users); start += batchSize {
			end := min(start+batchSize, len(users))
			for _, res := range c.UpsertUsers(ctx, users[start:end]) {
				switch {
				case res.Err != nil:
					failed++
					logger.Warn("seed failed", zap.String("id", res.ID), zap.Error(res.Err))
				case res.Created:
					created++
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d users failed", failed, count)
		}
		logger.Info("seed complete", zap.Int("count", count), zap.Int("created", created))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntP("count", "n", 50, "number of users to insert")
	seedCmd.Flags().Uint64("seed", 1, "random seed; the same seed yields the same users")
}

// generate builds n deterministic demo profiles with ids demo-0001 and up.
// About a fifth of them accept any gender.
func generate(n int, seed uint64) []matchmaker.Profile {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // demo data
	out := make([]matchmaker.Profile, 0, n)
	for i := range n {
		age := 20 + r.IntN(21)
		gender := genders[r.IntN(len(genders))]

		prefGender := genders[1]
		if gender == genders[1] {
			prefGender = genders[0]
		}
		if r.IntN(5) == 0 {
			prefGender = matchmaker.AnyGender
		}
		minAge, maxAge := age-5, age+5

		prefs := matchmaker.Preferences{Gender: prefGender, AgeMin: &minAge, AgeMax: &maxAge}
		if r.IntN(2) == 0 {
			prefs.Location = locations[r.IntN(len(locations))]
		}

		out = append(out, matchmaker.Profile{
			ID:          fmt.Sprintf("demo-%04d", i+1),
			Name:        names[r.IntN(len(names))],
			Age:         age,
			Gender:      gender,
			Location:    locations[r.IntN(len(locations))],
			Interests:   pick(r, interests, 1+r.IntN(4)),
			Preferences: prefs,
		})
	}
	return out
}

func pick(r *rand.Rand, from []string, k int) []string {
	idx := r.Perm(len(from))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
