package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mediacut/videocut/internal/types"
)

// MetadataDB handles SQLite database operations for uploaded files and
// their transcriptions.
type MetadataDB struct {
	db *sql.DB
}

// UploadedFile is one row of the uploaded_files table.
type UploadedFile struct {
	ID               int64     `json:"id"`
	UniqueFilename   string    `json:"unique_filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileType         string    `json:"file_type"`
	UploadTime       time.Time `json:"upload_time"`
}

// TranscriptionRecord is one row of the transcriptions table.
type TranscriptionRecord struct {
	ID        int64        `json:"id"`
	FileID    string       `json:"file_id"`
	FilePath  string       `json:"file_path"`
	LocalPath string       `json:"local_path"`
	Words     []types.Word `json:"words"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewMetadataDB opens (creating if needed) the metadata database.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS uploaded_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unique_filename TEXT NOT NULL UNIQUE,
		original_filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_type TEXT NOT NULL,
		upload_time DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id TEXT NOT NULL UNIQUE,
		file_path TEXT NOT NULL,
		local_path TEXT,
		words_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_upload_time ON uploaded_files(upload_time);
	CREATE INDEX IF NOT EXISTS idx_transcription_file ON transcriptions(file_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveUploadedFile records a newly stored upload.
func (mdb *MetadataDB) SaveUploadedFile(uniqueFilename, originalFilename, filePath, fileType string) error {
	query := `
	INSERT INTO uploaded_files (unique_filename, original_filename, file_path, file_type, upload_time)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, uniqueFilename, originalFilename, filePath, fileType, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save uploaded file metadata: %v", err)
	}
	return nil
}

// GetUploadedFile retrieves an upload record by its unique filename.
func (mdb *MetadataDB) GetUploadedFile(uniqueFilename string) (*UploadedFile, error) {
	query := `
	SELECT id, unique_filename, original_filename, file_path, file_type, upload_time
	FROM uploaded_files WHERE unique_filename = ?
	`

	var f UploadedFile
	err := mdb.db.QueryRow(query, uniqueFilename).Scan(
		&f.ID, &f.UniqueFilename, &f.OriginalFilename, &f.FilePath, &f.FileType, &f.UploadTime)
	if err != nil {
		return nil, fmt.Errorf("failed to get uploaded file: %v", err)
	}
	return &f, nil
}

// SaveTranscription stores the word-level transcript for a file, replacing
// any previous one.
func (mdb *MetadataDB) SaveTranscription(fileID, filePath, localPath string, words []types.Word) error {
	wordsJSON, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %v", err)
	}

	query := `
	INSERT INTO transcriptions (file_id, file_path, local_path, words_json, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(file_id) DO UPDATE SET
		file_path = excluded.file_path,
		local_path = excluded.local_path,
		words_json = excluded.words_json,
		created_at = excluded.created_at
	`

	_, err = mdb.db.Exec(query, fileID, filePath, localPath, string(wordsJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save transcription: %v", err)
	}
	return nil
}

// GetTranscription retrieves a stored transcript by file ID.
func (mdb *MetadataDB) GetTranscription(fileID string) (*TranscriptionRecord, error) {
	query := `
	SELECT id, file_id, file_path, local_path, words_json, created_at
	FROM transcriptions WHERE file_id = ?
	`

	var (
		rec       TranscriptionRecord
		localPath sql.NullString
		wordsJSON string
	)
	err := mdb.db.QueryRow(query, fileID).Scan(
		&rec.ID, &rec.FileID, &rec.FilePath, &localPath, &wordsJSON, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcription: %v", err)
	}
	rec.LocalPath = localPath.String

	if err := json.Unmarshal([]byte(wordsJSON), &rec.Words); err != nil {
		return nil, fmt.Errorf("failed to decode stored transcript: %v", err)
	}
	return &rec, nil
}

// Close closes the database connection.
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
