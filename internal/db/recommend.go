package db

import (
	"context"
	"errors"
	"log/slog"

	"fieldexplorer/internal/models"
	"fieldexplorer/internal/storage"
)

// The restriction resolves keyword ids through the current favorites on
// every call, so recommendations always reflect the latest list.
const favoriteKeywordFilter = `
	pk.keyword_id IN (
		SELECT k.id FROM keyword k
		WHERE k.name IN (SELECT name FROM fav_keywords)
	)
`

const recommendedProfessorsQuery = `
	SELECT f.name, u.name,
	       ROUND(SUM(p.num_citations * pk.score)::numeric, 2)::float8 AS total_krc
	FROM faculty f
	JOIN faculty_publication fp ON f.id = fp.faculty_id
	JOIN publication p ON fp.publication_id = p.id
	JOIN publication_keyword pk ON p.id = pk.publication_id
	JOIN university u ON f.university_id = u.id
	WHERE ` + favoriteKeywordFilter + `
	GROUP BY f.id, f.name, u.name
	ORDER BY SUM(p.num_citations * pk.score) DESC, f.name ASC
	LIMIT $1
`

const recommendedUniversitiesQuery = `
	SELECT u.name, COUNT(DISTINCT f.id) AS related_prof_count,
	       ROUND(SUM(p.num_citations * pk.score)::numeric, 2)::float8 AS total_krc
	FROM faculty f
	JOIN faculty_publication fp ON f.id = fp.faculty_id
	JOIN publication p ON fp.publication_id = p.id
	JOIN publication_keyword pk ON p.id = pk.publication_id
	JOIN university u ON f.university_id = u.id
	WHERE ` + favoriteKeywordFilter + `
	GROUP BY u.id, u.name
	ORDER BY SUM(p.num_citations * pk.score) DESC, u.name ASC
	LIMIT $1
`

// RecommendedProfessors returns the top professors by total KRC over
// publications labeled with a favorite keyword.
func (d *DB) RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error) {
	profs, err := run(ctx, d, "recommended_professors", func(ctx context.Context) ([]models.RecommendedProfessor, error) {
		rows, err := d.Pool.Query(ctx, recommendedProfessorsQuery, models.RecommendationLimit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		profs := []models.RecommendedProfessor{}
		for rows.Next() {
			var p models.RecommendedProfessor
			if err := rows.Scan(&p.Professor, &p.Institute, &p.TotalKRC); err != nil {
				return nil, err
			}
			profs = append(profs, p)
		}
		return profs, rows.Err()
	})
	if errors.Is(err, storage.ErrSchemaMissing) {
		return []models.RecommendedProfessor{}, d.healSchema(ctx, err)
	}
	return profs, err
}

// RecommendedUniversities returns the top institutes by total KRC of their
// faculty over publications labeled with a favorite keyword.
func (d *DB) RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error) {
	univs, err := run(ctx, d, "recommended_universities", func(ctx context.Context) ([]models.RecommendedUniversity, error) {
		rows, err := d.Pool.Query(ctx, recommendedUniversitiesQuery, models.RecommendationLimit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		univs := []models.RecommendedUniversity{}
		for rows.Next() {
			var u models.RecommendedUniversity
			if err := rows.Scan(&u.Institute, &u.RelatedProfessorCount, &u.TotalKRC); err != nil {
				return nil, err
			}
			univs = append(univs, u)
		}
		return univs, rows.Err()
	})
	if errors.Is(err, storage.ErrSchemaMissing) {
		return []models.RecommendedUniversity{}, d.healSchema(ctx, err)
	}
	return univs, err
}

// healSchema recreates a dropped favorite table. With no table there are no
// favorites, so callers report an empty recommendation. If the favorite table
// is present the missing relation is reference data and cause is returned.
func (d *DB) healSchema(ctx context.Context, cause error) error {
	exists, err := d.favoritesTableExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return cause
	}
	slog.Warn("favorite keyword table missing, recreating")
	return d.EnsureSchema(ctx)
}

func (d *DB) favoritesTableExists(ctx context.Context) (bool, error) {
	return run(ctx, d, "favorites_table_exists", func(ctx context.Context) (bool, error) {
		var exists bool
		err := d.Pool.QueryRow(ctx, `SELECT to_regclass('fav_keywords') IS NOT NULL`).Scan(&exists)
		return exists, err
	})
}
