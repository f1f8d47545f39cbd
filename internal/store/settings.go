package store

import (
	"context"
	"encoding/json"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
)

// Settings keys consumed by the pipeline.
const (
	SettingModel           = "ollama_model"
	SettingCtxSize         = "ollama_ctx_size"
	SettingSystemPrompt    = "ollama_system_prompt"
	SettingUserPrompt      = "ollama_user_prompt"
	SettingCustomStopWords = "ollama_custom_stop_words"
	SettingYTAPIKey        = "yt_api_key"
)

// seedDefaultSettings writes the initial settings rows on first run. Values
// are operator-editable afterwards and are read fresh per pipeline invocation.
func (s *Store) seedDefaultSettings() error {
	stopWords, err := json.Marshal(engine.DefaultCustomStopWords)
	if err != nil {
		return err
	}
	defaults := map[string]string{
		"app_confirm_delete":   "True",
		"app_tooltip_time":     "1000",
		SettingYTAPIKey:        "Fill in this value...",
		SettingModel:           "qwen2.5-coder:7b",
		SettingCtxSize:         "1200",
		SettingSystemPrompt:    engine.DefaultSystemPrompt,
		SettingUserPrompt:      engine.DefaultUserPrompt,
		SettingCustomStopWords: string(stopWords),
	}
	for k, v := range defaults {
		if err := s.PutSetting(context.Background(), k, v); err != nil {
			return err
		}
	}
	return nil
}

// Settings returns the full settings map. Callers snapshot this once per job;
// it is never cached across runs since an operator may edit it mid-session.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT setting, setting_value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// PutSetting inserts or updates a single setting.
func (s *Store) PutSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (setting, setting_value) VALUES (?, ?)
		 ON CONFLICT(setting) DO UPDATE SET setting_value = excluded.setting_value`,
		name, value)
	return err
}
