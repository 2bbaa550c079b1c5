package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Activity is one append-only entry in a playlist's mutation trail, joined
// with the acting user's name and the song title.
type Activity struct {
	Username string    `json:"username"`
	Title    string    `json:"title"`
	Action   string    `json:"action"`
	Time     time.Time `json:"time"`
}

// InsertActivity appends an activity row. The timestamp is assigned by the
// database so entries order by insertion within a playlist.
func (s *Store) InsertActivity(ctx context.Context, playlistID, userID, songID, action string) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists_activities (playlist_id, user_id, song_id, action)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, playlistID, userID, songID, action).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNothingInserted
	}
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ActivitiesByPlaylist returns the playlist's activity trail oldest first.
func (s *Store) ActivitiesByPlaylist(ctx context.Context, playlistID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT users.username, songs.title, playlists_activities.action, playlists_activities.time
		FROM playlists_activities
		LEFT JOIN users ON users.id = playlists_activities.user_id
		LEFT JOIN songs ON songs.id = playlists_activities.song_id
		WHERE playlists_activities.playlist_id = $1
		ORDER BY playlists_activities.time ASC, playlists_activities.id ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var activity Activity
		if err := rows.Scan(&activity.Username, &activity.Title, &activity.Action, &activity.Time); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}
