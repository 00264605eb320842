package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Заглушка, которую нужно заменить на путь к файлу или ссылку на него
const sourcePlaceholder = "путь или ссылка на файл"

// DefaultCompositeChair объединяет листы двух кафедр в таблице тем
const DefaultCompositeChair = "Информатика/ПА"

// Sources описывает, откуда брать расписание и таблицы тем ВКР.
// Каждое значение - путь к файлу, абсолютная ссылка или s3://bucket/key.
type Sources struct {
	Schedule string `yaml:"schedule"`
	Contents string `yaml:"contents,omitempty"`

	// Themes сопоставляет уровень образования (второе поле описания заседания)
	// с таблицей тем. Ключи задают полный набор известных уровней.
	Themes map[string]string `yaml:"themes"`

	CompositeChairs map[string][]string `yaml:"composite_chairs,omitempty"`
	ChairAliases    map[string]string   `yaml:"chair_aliases,omitempty"`

	SaveOrdersToDisk bool `yaml:"save_orders_to_disk"`
	UploadOrders     bool `yaml:"upload_orders"`
}

func defaultSources() Sources {
	return Sources{
		Schedule: sourcePlaceholder,
		Contents: sourcePlaceholder,
		Themes: map[string]string{
			"бакалавры техпрога": sourcePlaceholder,
			"бакалавры ПИ":       sourcePlaceholder,
			"магистры техпрога":  sourcePlaceholder,
			"магистры ПИ":        sourcePlaceholder,
		},
		CompositeChairs: map[string][]string{
			DefaultCompositeChair: {"Информатики", "ПА"},
		},
		ChairAliases:     map[string]string{},
		SaveOrdersToDisk: true,
		UploadOrders:     true,
	}
}

// LoadSources читает YAML с источниками
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources разбирает YAML и проверяет обязательные поля
func ParseSources(data []byte) (*Sources, error) {
	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	s.Schedule = strings.TrimSpace(s.Schedule)
	if s.Schedule == "" || s.Schedule == sourcePlaceholder {
		return nil, errors.New("sources file: schedule location is not set")
	}
	if s.Themes == nil {
		s.Themes = map[string]string{}
	}
	for level, location := range s.Themes {
		location = strings.TrimSpace(location)
		if location == sourcePlaceholder {
			location = ""
		}
		s.Themes[level] = location
	}
	// Известные уровни без таблицы остаются известными, консультанты для них просто не заполняются
	for level := range defaultSources().Themes {
		if _, ok := s.Themes[level]; !ok {
			s.Themes[level] = ""
		}
	}
	if s.Contents == sourcePlaceholder {
		s.Contents = ""
	}
	if s.CompositeChairs == nil {
		s.CompositeChairs = defaultSources().CompositeChairs
	}
	for chair, sheets := range s.CompositeChairs {
		if len(sheets) < 2 {
			return nil, fmt.Errorf("sources file: composite chair %q needs at least two sheets", chair)
		}
	}
	if s.ChairAliases == nil {
		s.ChairAliases = map[string]string{}
	}
	return &s, nil
}

// WriteDefaultSources создаёт файл-заготовку, если его ещё нет.
// Возвращает true, если файл был создан.
func WriteDefaultSources(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat sources file: %w", err)
	}

	data, err := yaml.Marshal(defaultSources())
	if err != nil {
		return false, fmt.Errorf("encode default sources: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create sources dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write sources file: %w", err)
	}
	return true, nil
}
