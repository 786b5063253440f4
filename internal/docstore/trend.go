package docstore

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"fieldexplorer/internal/models"
)

// Trend returns the number of publications labeled with keyword per year,
// restricted to [TrendMinYear, TrendMaxYear] and ordered by year.
func (s *Store) Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error) {
	return run(ctx, s, "trend", func(ctx context.Context) ([]models.TrendPoint, error) {
		cursor, err := s.publications.Aggregate(ctx, trendPipeline(keyword))
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var rows []models.TrendPoint
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, err
		}

		points := make([]models.TrendPoint, 0, len(rows))
		for _, r := range rows {
			if r.Year < models.TrendMinYear || r.Year > models.TrendMaxYear {
				continue
			}
			points = append(points, r)
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })
		return points, nil
	})
}

func trendPipeline(keyword string) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "keywords.name", Value: keyword},
			{Key: "year", Value: bson.D{
				{Key: "$gte", Value: models.TrendMinYear},
				{Key: "$lte", Value: models.TrendMaxYear},
			}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$year"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// KeywordCatalog returns every distinct keyword name across publications, sorted.
func (s *Store) KeywordCatalog(ctx context.Context) ([]string, error) {
	return run(ctx, s, "keyword_catalog", func(ctx context.Context) ([]string, error) {
		values, err := s.publications.Distinct(ctx, "keywords.name", bson.D{})
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(values))
		for _, v := range values {
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("keyword name has type %T, want string", v)
			}
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	})
}
