package cache

// Cache keys live in one place so readers and invalidators cannot drift.

// KeyUserPlaylists indexes the playlists a user can see.
func KeyUserPlaylists(userID string) string { return "playlists:" + userID }

// KeyPlaylistSongs indexes a playlist's song set.
func KeyPlaylistSongs(playlistID string) string { return "songsPlaylists:" + playlistID }

// KeyPlaylistActivity indexes a playlist's activity trail.
func KeyPlaylistActivity(playlistID string) string { return "playlistActivity:" + playlistID }
