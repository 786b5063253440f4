package graph

import (
	"context"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"fieldexplorer/internal/models"
	"fieldexplorer/internal/storage"
)

const topProfessorsQuery = `
	MATCH (f:FACULTY)-[:PUBLISH]-(p:PUBLICATION)-[l:LABEL_BY]-(k:KEYWORD {name: $keyword}),
	      (f)-[:AFFILIATION_WITH]-(i:INSTITUTE)
	WHERE p.year >= $start AND p.year <= $end
	WITH f, i, SUM(p.numCitations * l.score) AS krc
	RETURN f.name AS professor, i.name AS institute, ROUND(krc, 2) AS citation_score
	ORDER BY citation_score DESC, professor ASC
	LIMIT $limit
`

const topKeywordsForUniversityQuery = `
	MATCH (i:INSTITUTE {name: $institute})<-[:AFFILIATION_WITH]-(f:FACULTY)-[:INTERESTED_IN]->(k:KEYWORD)
	RETURN k.name AS keyword, COUNT(DISTINCT f) AS professor_count
	ORDER BY professor_count DESC, keyword ASC
	LIMIT $limit
`

// Only keywords the professor declared an interest in count, and only
// through publications labeled with that same keyword.
const topKeywordsForProfessorQuery = `
	MATCH (k1:KEYWORD)<-[:INTERESTED_IN]-(f:FACULTY {name: $professor})-[:PUBLISH]->(p:PUBLICATION)-[l:LABEL_BY]->(k2:KEYWORD)
	WHERE k2.name = k1.name
	RETURN k2.name AS keyword, ROUND(SUM(l.score * p.numCitations), 2) AS citation_score
	ORDER BY citation_score DESC, keyword ASC
	LIMIT $limit
`

const universityCatalogQuery = `
	MATCH (i:INSTITUTE)
	RETURN i.name AS name
	ORDER BY name
`

const professorCatalogQuery = `
	MATCH (f:FACULTY)
	RETURN f.name AS name
	ORDER BY name
`

// Engine runs the analytics queries.
type Engine struct {
	runner Runner
	guard  *storage.Guard
}

// NewEngine creates an engine that queries through r.
func NewEngine(r Runner) *Engine {
	return &Engine{runner: r}
}

// UseGuard routes every query through g.
func (e *Engine) UseGuard(g *storage.Guard) {
	e.guard = g
}

func (e *Engine) query(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return storage.Run(ctx, e.guard, op, func(ctx context.Context) ([]*neo4j.Record, error) {
		records, err := e.runner.Run(ctx, cypher, params)
		return records, classify(op, err)
	})
}

// TopProfessors ranks professors by KRC for keyword over publications
// published between startYear and endYear inclusive.
func (e *Engine) TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error) {
	records, err := e.query(ctx, "top_professors", topProfessorsQuery, map[string]any{
		"keyword": keyword,
		"start":   int64(startYear),
		"end":     int64(endYear),
		"limit":   int64(models.TopEntityLimit),
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.ProfessorScore, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.ProfessorScore{
			Professor: getStringFromRecord(r, "professor"),
			Institute: getStringFromRecord(r, "institute"),
			KRC:       getFloat64FromRecord(r, "citation_score"),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].KRC != rows[j].KRC {
			return rows[i].KRC > rows[j].KRC
		}
		return rows[i].Professor < rows[j].Professor
	})
	return truncate(rows, models.TopEntityLimit), nil
}

// TopKeywordsForUniversity ranks keywords by the number of the institute's
// faculty interested in them.
func (e *Engine) TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error) {
	records, err := e.query(ctx, "top_keywords_for_university", topKeywordsForUniversityQuery, map[string]any{
		"institute": institute,
		"limit":     int64(models.TopEntityLimit),
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.KeywordInterest, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.KeywordInterest{
			Keyword:        getStringFromRecord(r, "keyword"),
			ProfessorCount: getInt64FromRecord(r, "professor_count"),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProfessorCount != rows[j].ProfessorCount {
			return rows[i].ProfessorCount > rows[j].ProfessorCount
		}
		return rows[i].Keyword < rows[j].Keyword
	})
	return truncate(rows, models.TopEntityLimit), nil
}

// TopKeywordsForProfessor ranks the professor's declared interests by KRC.
func (e *Engine) TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error) {
	records, err := e.query(ctx, "top_keywords_for_professor", topKeywordsForProfessorQuery, map[string]any{
		"professor": professor,
		"limit":     int64(models.TopEntityLimit),
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.KeywordScore, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.KeywordScore{
			Keyword: getStringFromRecord(r, "keyword"),
			KRC:     getFloat64FromRecord(r, "citation_score"),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].KRC != rows[j].KRC {
			return rows[i].KRC > rows[j].KRC
		}
		return rows[i].Keyword < rows[j].Keyword
	})
	return truncate(rows, models.TopEntityLimit), nil
}

// UniversityCatalog lists institute names alphabetically.
func (e *Engine) UniversityCatalog(ctx context.Context) ([]string, error) {
	return e.names(ctx, "university_catalog", universityCatalogQuery)
}

// ProfessorCatalog lists faculty names alphabetically.
func (e *Engine) ProfessorCatalog(ctx context.Context) ([]string, error) {
	return e.names(ctx, "professor_catalog", professorCatalogQuery)
}

func (e *Engine) names(ctx context.Context, op, cypher string) ([]string, error) {
	records, err := e.query(ctx, op, cypher, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, getStringFromRecord(r, "name"))
	}
	sort.Strings(names)
	return names, nil
}

func truncate[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
