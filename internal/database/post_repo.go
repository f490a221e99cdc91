package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shubh-37/post-scheduler/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, message, category, has_image, has_video,
	scheduled_month, scheduled_day, scheduled_year,
	status, score, feedback, created_at, updated_at`

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ListOptions narrows a post listing. Zero values mean no filter.
type ListOptions struct {
	Status string
	Search string // case-insensitive match on the message
	Sort   SortOrder
	Limit  int
}

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post into the database
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Feedback == nil {
		post.Feedback = []string{}
	}

	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.Message,
		post.Category,
		post.HasImage,
		post.HasVideo,
		post.ScheduledMonth,
		post.ScheduledDay,
		post.ScheduledYear,
		post.Status,
		post.Score,
		post.Feedback,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, ErrPostNotFound
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}

	return post, nil
}

// List retrieves posts matching opts
func (r *PostRepository) List(ctx context.Context, opts ListOptions) ([]*models.Post, error) {
	query, args := buildListQuery(opts)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	return posts, nil
}

// GetByStatus retrieves posts by status, earliest posting date first
func (r *PostRepository) GetByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	return r.List(ctx, ListOptions{Status: status, Sort: SortAscending})
}

// Update writes every mutable field of a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if !validID(post.ID) {
		return ErrPostNotFound
	}
	post.UpdatedAt = time.Now()

	query := `
		UPDATE posts
		SET message = $2, category = $3, has_image = $4, has_video = $5,
		    scheduled_month = $6, scheduled_day = $7, scheduled_year = $8,
		    status = $9, score = $10, feedback = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.Message,
		post.Category,
		post.HasImage,
		post.HasVideo,
		post.ScheduledMonth,
		post.ScheduledDay,
		post.ScheduledYear,
		post.Status,
		post.Score,
		post.Feedback,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// UpdateStatus updates only the status of a post
func (r *PostRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !validID(id) {
		return ErrPostNotFound
	}
	query := `UPDATE posts SET status = $2, updated_at = now() WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete deletes a post by ID
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrPostNotFound
	}
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CountByStatus returns the number of posts per status
func (r *PostRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func buildListQuery(opts ListOptions) (string, []any) {
	var where []string
	var args []any

	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, fmt.Sprintf("message ILIKE $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + postColumns + " FROM posts")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	dir := "ASC"
	if opts.Sort == SortDescending {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY scheduled_year %[1]s NULLS LAST, scheduled_month %[1]s NULLS LAST, scheduled_day %[1]s NULLS LAST, created_at %[1]s", dir)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args
}

// validID reports whether id can name a post. Anything else would reach
// Postgres as an invalid uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanPost(row pgx.Row) (*models.Post, error) {
	post := &models.Post{}
	err := row.Scan(
		&post.ID,
		&post.Message,
		&post.Category,
		&post.HasImage,
		&post.HasVideo,
		&post.ScheduledMonth,
		&post.ScheduledDay,
		&post.ScheduledYear,
		&post.Status,
		&post.Score,
		&post.Feedback,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}
