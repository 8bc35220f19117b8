package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stayfinder/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// listingRow is the flat scan target for the listings table.
type listingRow struct {
	ListingID    string          `db:"listing_id"`
	Name         string          `db:"name"`
	NightlyRate  float64         `db:"nightly_rate"`
	TotalPrice   *float64        `db:"total_price"`
	Currency     string          `db:"currency"`
	Rating       *float64        `db:"rating"`
	ReviewsCount *int            `db:"reviews_count"`
	RoomType     string          `db:"room_type"`
	PropertyType string          `db:"property_type"`
	Amenities    model.JSONArray `db:"amenities"`
	IsSuperhost  bool            `db:"is_superhost"`
	Location     string          `db:"location"`
	Bedrooms     *int            `db:"bedrooms"`
	Bathrooms    *float64        `db:"bathrooms"`
	TrustScore   *float64        `db:"trust_score"`
	URL          string          `db:"url"`
	ListedAt     *time.Time      `db:"listed_at"`
	TextRank     float64         `db:"text_rank"`
}

func (row *listingRow) toModel() model.Listing {
	return model.Listing{
		ID:   row.ListingID,
		Name: row.Name,
		Price: model.Price{
			Rate:     row.NightlyRate,
			Total:    row.TotalPrice,
			Currency: row.Currency,
		},
		Rating:       row.Rating,
		ReviewsCount: row.ReviewsCount,
		RoomType:     row.RoomType,
		PropertyType: row.PropertyType,
		Amenities:    row.Amenities,
		Host:         model.Host{IsSuperhost: row.IsSuperhost},
		Location:     row.Location,
		Bedrooms:     row.Bedrooms,
		Bathrooms:    row.Bathrooms,
		TrustScore:   row.TrustScore,
		URL:          row.URL,
		ListedAt:     row.ListedAt,
	}
}

const listingColumns = `
	listing_id, name, nightly_rate, total_price, currency, rating,
	reviews_count, room_type, property_type, amenities, is_superhost,
	location, bedrooms, bathrooms, trust_score, url, listed_at`

// SearchCandidates fetches the candidate set for one conversational turn:
// listings in the destination, ranked by full-text relevance against the
// extracted keywords. The in-process filter engine narrows this set; the
// database only does the coarse location cut.
func (r *PostgresRepository) SearchCandidates(ctx context.Context, location string, keywords []string, limit, offset int) ([]model.Listing, int, error) {
	whereClauses := []string{"is_active = true"}
	args := []interface{}{}
	argIndex := 1

	if location != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+location+"%")
		argIndex++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s,
			ts_rank(search_vector, plainto_tsquery('english', $%d)) as text_rank
		FROM listings
		WHERE %s
		ORDER BY text_rank DESC, rating DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, listingColumns, argIndex, whereClause, argIndex+1, argIndex+2)

	searchText := strings.Join(keywords, " ")
	args = append(args, searchText, limit, offset)

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	listings := make([]model.Listing, len(rows))
	for i := range rows {
		listings[i] = rows[i].toModel()
	}
	return listings, total, nil
}

// GetListingByID retrieves a single listing by its ID
func (r *PostgresRepository) GetListingByID(ctx context.Context, listingID string) (*model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE listing_id = $1 AND is_active = true
	`, listingColumns)

	var row listingRow
	err := r.db.GetContext(ctx, &row, query, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	listing := row.toModel()
	return &listing, nil
}

// UpdateEmbedding updates the embedding vector for a listing
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, listingID string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE listing_id = $2`
	if _, err := r.db.ExecContext(ctx, query, vec, listingID); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple listings
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE listing_id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.ListingID); err != nil {
			errors = append(errors, fmt.Sprintf("listing_id %s: %v", item.ListingID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// VectorSearch performs semantic similarity search over listing embeddings.
func (r *PostgresRepository) VectorSearch(ctx context.Context, queryEmbedding []float32, location string, limit int) ([]model.Listing, error) {
	vec := pgvector.NewVector(queryEmbedding)

	whereClauses := []string{"is_active = true", "embedding IS NOT NULL"}
	args := []interface{}{vec}
	argIndex := 2

	if location != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+location+"%")
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s, 0.0 as text_rank
		FROM listings
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, listingColumns, strings.Join(whereClauses, " AND "), argIndex)
	args = append(args, limit)

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}

	listings := make([]model.Listing, len(rows))
	for i := range rows {
		listings[i] = rows[i].toModel()
	}
	return listings, nil
}

// TurnLog captures one conversational turn for offline analysis.
type TurnLog struct {
	ConversationID string
	Utterance      string
	Intents        []string
	Keywords       []string
	Applied        []string
	Relaxed        []string
	ResultCount    int
	ListingIDs     []string
	TookMs         int
}

// LogTurn records a conversational turn. Slice fields go into jsonb columns.
func (r *PostgresRepository) LogTurn(ctx context.Context, entry *TurnLog) error {
	intents, _ := json.Marshal(entry.Intents)
	keywords, _ := json.Marshal(entry.Keywords)
	applied, _ := json.Marshal(entry.Applied)
	relaxed, _ := json.Marshal(entry.Relaxed)
	listingIDs, _ := json.Marshal(entry.ListingIDs)

	query := `
		INSERT INTO conversation_turns
			(conversation_id, utterance, intents, keywords, applied_criteria, relaxed_criteria, result_count, returned_listing_ids, took_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ConversationID, entry.Utterance, intents, keywords,
		applied, relaxed, entry.ResultCount, listingIDs, entry.TookMs)
	if err != nil {
		return fmt.Errorf("failed to log turn: %w", err)
	}
	return nil
}

// LogFeedback logs a user action on a returned listing
func (r *PostgresRepository) LogFeedback(ctx context.Context, conversationID, listingID, action string) error {
	query := `
		INSERT INTO listing_feedback (conversation_id, listing_id, action)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, conversationID, listingID, action); err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
