package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"omr-portal/internal/model"
	"omr-portal/pkg/prnid"
)

// 递增时钟，保证答题卡/世代创建时间单调递增
var mockClock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func nextTime() time.Time {
	mockClock = mockClock.Add(time.Second)
	return mockClock
}

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[string]*model.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if admin.AdminID == "" {
		admin.AdminID = "adm-" + admin.Username
	}
	m.admins[admin.AdminID] = admin
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByUsername(_ context.Context, username string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) List(_ context.Context) ([]model.Admin, error) {
	var result []model.Admin
	for _, a := range m.admins {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

// ── Mock BatchRepository ──

type mockBatchRepo struct {
	batches map[string]*model.Batch
}

func newMockBatchRepo() *mockBatchRepo {
	return &mockBatchRepo{batches: make(map[string]*model.Batch)}
}

func (m *mockBatchRepo) Create(_ context.Context, batch *model.Batch) error {
	if batch.BatchID == "" {
		batch.BatchID = "bat-" + batch.Name
	}
	m.batches[batch.BatchID] = batch
	return nil
}

func (m *mockBatchRepo) GetByID(_ context.Context, id string) (*model.Batch, error) {
	if b, ok := m.batches[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBatchRepo) GetByName(_ context.Context, name string) (*model.Batch, error) {
	for _, b := range m.batches {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBatchRepo) List(_ context.Context) ([]model.Batch, error) {
	var result []model.Batch
	for _, b := range m.batches {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockBatchRepo) Delete(_ context.Context, id string) error {
	delete(m.batches, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "crs-" + course.Name
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByBatchAndName(_ context.Context, batchID, name string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.BatchID == batchID && c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListByBatch(_ context.Context, batchID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.BatchID == batchID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = "sub-" + subject.Name
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCourseAndName(_ context.Context, courseID, name string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.CourseID == courseID && s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByCourse(_ context.Context, courseID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if s.CourseID == courseID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.subjects, id)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student // key: 规范 PRN
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = "stu-" + student.PRN
	}
	m.students[student.PRN] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByPRN(_ context.Context, p string) (*model.Student, error) {
	if s, ok := m.students[p]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) FindByLast3(_ context.Context, batchID *string, courseID, last3 string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.CourseID == nil || *s.CourseID != courseID {
			continue
		}
		if batchID != nil && (s.BatchID == nil || *s.BatchID != *batchID) {
			continue
		}
		if prnid.Last3(s.PRN) != last3 {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PRN < result[j].PRN })
	return result, nil
}

func (m *mockStudentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.CourseID != nil && *s.CourseID == courseID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PRN < result[j].PRN })
	return result, nil
}

func (m *mockStudentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	list, _ := m.ListByCourse(context.Background(), courseID)
	return int64(len(list)), nil
}

func (m *mockStudentRepo) MapByPRNs(_ context.Context, prns []string) (map[string]model.Student, error) {
	result := make(map[string]model.Student)
	for _, p := range prns {
		if s, ok := m.students[p]; ok {
			result[p] = *s
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.PRN] = student
	return nil
}

func (m *mockStudentRepo) UpdatePassword(_ context.Context, studentID, passwordHash string) error {
	for _, s := range m.students {
		if s.StudentID == studentID {
			s.PasswordHash = passwordHash
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	for p, s := range m.students {
		if s.StudentID == id {
			delete(m.students, p)
			return nil
		}
	}
	return nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	exams map[string]*model.Exam
	keys  map[string]map[int]string // examID → 题号 → 答案
	seq   int
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{
		exams: make(map[string]*model.Exam),
		keys:  make(map[string]map[int]string),
	}
}

func (m *mockExamRepo) Create(_ context.Context, exam *model.Exam) error {
	m.seq++
	if exam.ExamID == "" {
		exam.ExamID = fmt.Sprintf("exam-%03d", m.seq)
	}
	exam.CreatedAt = nextTime()
	m.exams[exam.ExamID] = exam
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id string) (*model.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) LatestBySubject(_ context.Context, subjectID string) (*model.Exam, error) {
	var latest *model.Exam
	for _, e := range m.exams {
		if e.SubjectID != subjectID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockExamRepo) ListBySubject(_ context.Context, subjectID string) ([]model.Exam, error) {
	var result []model.Exam
	for _, e := range m.exams {
		if e.SubjectID == subjectID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockExamRepo) BatchCreateKeys(_ context.Context, keys []model.ExamKey) error {
	for _, k := range keys {
		if m.keys[k.ExamID] == nil {
			m.keys[k.ExamID] = make(map[int]string)
		}
		m.keys[k.ExamID][k.QuestionNo] = k.KeyAnswer
	}
	return nil
}

func (m *mockExamRepo) KeyMapByExam(_ context.Context, examID string) (map[int]string, error) {
	result := make(map[int]string)
	for qno, ans := range m.keys[examID] {
		result[qno] = ans
	}
	return result, nil
}

// ── Mock SheetRepository ──

type mockSheetRepo struct {
	sheets  map[string]*model.ExamSheet
	answers map[string][]model.ExamAnswer
	seq     int
}

func newMockSheetRepo() *mockSheetRepo {
	return &mockSheetRepo{
		sheets:  make(map[string]*model.ExamSheet),
		answers: make(map[string][]model.ExamAnswer),
	}
}

func (m *mockSheetRepo) BatchCreate(_ context.Context, sheets []model.ExamSheet) error {
	for i := range sheets {
		m.seq++
		if sheets[i].SheetID == "" {
			sheets[i].SheetID = fmt.Sprintf("sheet-%03d", m.seq)
		}
		sheets[i].CreatedAt = nextTime()
		copied := sheets[i]
		for j := range copied.Answers {
			copied.Answers[j].SheetID = copied.SheetID
		}
		m.answers[copied.SheetID] = copied.Answers
		m.sheets[copied.SheetID] = &copied
	}
	return nil
}

func (m *mockSheetRepo) GetByID(_ context.Context, id string) (*model.ExamSheet, error) {
	if s, ok := m.sheets[id]; ok {
		copied := *s
		copied.Answers = m.answers[id]
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSheetRepo) ListByExam(_ context.Context, examID string) ([]model.ExamSheet, error) {
	var result []model.ExamSheet
	for _, s := range m.sheets {
		if s.ExamID == examID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PRN != result[j].PRN {
			return result[i].PRN < result[j].PRN
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSheetRepo) ListConflictsByExam(_ context.Context, examID string) ([]model.ExamSheet, error) {
	var result []model.ExamSheet
	for _, s := range m.sheets {
		if s.ExamID == examID && s.IsConflict {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SheetID < result[j].SheetID })
	return result, nil
}

func (m *mockSheetRepo) ListByExamAndPRN(_ context.Context, examID, p string) ([]model.ExamSheet, error) {
	var result []model.ExamSheet
	for _, s := range m.sheets {
		if s.ExamID == examID && s.PRN == p {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockSheetRepo) LatestForPRN(_ context.Context, examID, p string) (*model.ExamSheet, error) {
	var latest *model.ExamSheet
	for _, s := range m.sheets {
		if s.ExamID != examID || s.PRN != p {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockSheetRepo) UpdateIdentity(_ context.Context, sheetID, p, name string, conflict bool) error {
	s, ok := m.sheets[sheetID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PRN = p
	s.Name = name
	s.IsConflict = conflict
	return nil
}

func (m *mockSheetRepo) UpdateScore(_ context.Context, sheetID string, score int) error {
	s, ok := m.sheets[sheetID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Score = score
	return nil
}

func (m *mockSheetRepo) ListAnswers(_ context.Context, sheetID string) ([]model.ExamAnswer, error) {
	return m.answers[sheetID], nil
}

func (m *mockSheetRepo) DeleteAnswers(_ context.Context, sheetID string) error {
	delete(m.answers, sheetID)
	return nil
}

func (m *mockSheetRepo) BatchCreateAnswers(_ context.Context, answers []model.ExamAnswer) error {
	for _, a := range answers {
		m.answers[a.SheetID] = append(m.answers[a.SheetID], a)
	}
	return nil
}

// ── Mock LabMarkRepository ──

type mockLabMarkRepo struct {
	marks map[string]*model.LabMark // key: subjectID + "|" + prn
}

func newMockLabMarkRepo() *mockLabMarkRepo {
	return &mockLabMarkRepo{marks: make(map[string]*model.LabMark)}
}

func labKey(subjectID, p string) string { return subjectID + "|" + p }

func (m *mockLabMarkRepo) Upsert(_ context.Context, mark *model.LabMark) error {
	mark.UpdatedAt = nextTime()
	m.marks[labKey(mark.SubjectID, mark.PRN)] = mark
	return nil
}

func (m *mockLabMarkRepo) BatchUpsert(ctx context.Context, marks []model.LabMark) error {
	for i := range marks {
		copied := marks[i]
		if err := m.Upsert(ctx, &copied); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockLabMarkRepo) GetBySubjectAndPRN(_ context.Context, subjectID, p string) (*model.LabMark, error) {
	if mk, ok := m.marks[labKey(subjectID, p)]; ok {
		return mk, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabMarkRepo) AnyForSubject(_ context.Context, subjectID string) (bool, error) {
	for _, mk := range m.marks {
		if mk.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLabMarkRepo) MapBySubject(_ context.Context, subjectID string) (map[string]*float64, error) {
	result := make(map[string]*float64)
	for _, mk := range m.marks {
		if mk.SubjectID == subjectID {
			result[mk.PRN] = mk.Marks
		}
	}
	return result, nil
}

// ── Mock PublishRepository ──

type mockPublishRepo struct {
	pubs map[string]*model.SubjectPublish
}

func newMockPublishRepo() *mockPublishRepo {
	return &mockPublishRepo{pubs: make(map[string]*model.SubjectPublish)}
}

func (m *mockPublishRepo) Get(_ context.Context, subjectID string) (*model.SubjectPublish, error) {
	if p, ok := m.pubs[subjectID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPublishRepo) Upsert(_ context.Context, pub *model.SubjectPublish) error {
	m.pubs[pub.SubjectID] = pub
	return nil
}

func (m *mockPublishRepo) SetUnpublished(_ context.Context, subjectID string) error {
	p, ok := m.pubs[subjectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsPublished = false
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
