package services

import (
	"path"
	"strings"

	"defense-schedule/models"
)

type fileKind int

const (
	kindReport fileKind = iota
	kindPresentation
	kindSupervisorReview
	kindConsultantReview
	kindReviewerReview
)

// Суффиксы имён файлов: "<Фамилия>-<тип>.pdf" или "<Фамилия>.<Имя>-<тип>.pdf"
var fileKinds = map[string]fileKind{
	"отчёт":              kindReport,
	"отче\u0308т":        kindReport,
	"report":             kindReport,
	"презентация":        kindPresentation,
	"presentation":       kindPresentation,
	"отзыв":              kindSupervisorReview,
	"advisor-review":     kindSupervisorReview,
	"отзыв-консультанта": kindConsultantReview,
	"consultant-review":  kindConsultantReview,
	"рецензия":           kindReviewerReview,
	"reviewer-review":    kindReviewerReview,
}

var transliteration = map[rune]string{
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D",
	'Е': "E", 'Ё': "Yo", 'Ж': "Zh", 'З': "Z", 'И': "I",
	'Й': "I", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N",
	'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T",
	'У': "U", 'Ф': "F", 'Х': "Kh", 'Ц': "Ts", 'Ч': "Ch",
	'Ш': "Sh", 'Щ': "Shch", 'Ъ': "", 'Ы': "Y", 'Ь': "",
	'Э': "E", 'Ю': "Yu", 'Я': "Ya",
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "i", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// Transliterate переводит кириллицу в латиницу, остальные символы не меняет
func Transliterate(text string) string {
	var b strings.Builder
	for _, r := range text {
		if latin, ok := transliteration[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StudentFileVerifier сверяет файлы студентов одного дня с расписанием
type StudentFileVerifier struct {
	day *models.DaySchedule
}

func NewStudentFileVerifier(day *models.DaySchedule) *StudentFileVerifier {
	return &StudentFileVerifier{day: day}
}

// VerifyFiles отмечает найденные файлы у работ и возвращает пути подходящих файлов.
// Отзыв консультанта не нужен, только если студента нет в таблице тем (Consultant == nil).
// Пустой консультант в таблице отзыв не отменяет.
func (v *StudentFileVerifier) VerifyFiles(paths []string) []string {
	correct := make([]string, 0)
	for _, work := range v.day.StudentWorks() {
		for _, p := range studentFiles(work, paths) {
			if markStudentFile(work, p) {
				correct = append(correct, p)
			}
		}
		if work.Consultant == nil {
			work.HasConsultantReview = true
		}
	}
	return correct
}

// FindWorksWithMissingFiles возвращает работы, у которых не хватает файлов
func (v *StudentFileVerifier) FindWorksWithMissingFiles(paths []string) []models.StudentWork {
	v.VerifyFiles(paths)

	missing := make([]models.StudentWork, 0)
	for _, work := range v.day.StudentWorks() {
		if !work.IsComplete() {
			missing = append(missing, *work)
		}
	}
	return missing
}

func studentFiles(work *models.StudentWork, paths []string) []string {
	parts := strings.Fields(work.StudentName)
	if len(parts) < 2 {
		return nil
	}
	surname, name := parts[0], parts[1]
	prefixes := []string{
		surname + "-",
		surname + "." + name + "-",
		Transliterate(surname + "-"),
		Transliterate(surname + "." + name + "-"),
	}

	files := make([]string, 0)
	for _, p := range paths {
		base := baseName(p)
		for _, prefix := range prefixes {
			if strings.HasPrefix(base, prefix) {
				files = append(files, p)
				break
			}
		}
	}
	return files
}

// markStudentFile проверяет имя файла и отмечает тип файла у работы
func markStudentFile(work *models.StudentWork, p string) bool {
	base := baseName(p)
	if !strings.HasSuffix(base, ".pdf") {
		return false
	}
	idx := strings.Index(base, "-")
	if idx == -1 {
		return false
	}

	kind, ok := fileKinds[strings.TrimSuffix(base[idx+1:], ".pdf")]
	if !ok {
		return false
	}
	switch kind {
	case kindReport:
		work.HasReport = true
	case kindPresentation:
		work.HasPresentation = true
	case kindSupervisorReview:
		work.HasSupervisorReview = true
	case kindConsultantReview:
		work.HasConsultantReview = true
	case kindReviewerReview:
		work.HasReviewerReview = true
	}
	return true
}

// baseName работает и с путями ОС, и с ключами объектов
func baseName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
