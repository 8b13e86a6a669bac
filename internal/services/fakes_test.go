package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"profile-system/internal/entities"
	apperrors "profile-system/pkg/errors"
)

// Фейки репозиториев для юнит-тестов сервисов. Повторяют контракт
// SQL-реализаций, включая compare-and-set семантику переходов статуса.

type fakeCache struct {
	store map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]string{}} }

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.store[key]
	if !ok {
		return "", fmt.Errorf("ключ %s не найден", key)
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.store[key] = fmt.Sprintf("%v", value)
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

type fakeCategoryRepo struct {
	categories map[uint64]*entities.FieldCategory
	nextID     uint64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[uint64]*entities.FieldCategory{}, nextID: 1}
}

func (r *fakeCategoryRepo) GetCategories(_ context.Context) ([]entities.FieldCategory, error) {
	result := make([]entities.FieldCategory, 0, len(r.categories))
	for _, c := range r.categories {
		copied := *c
		copied.Fields = nil
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *fakeCategoryRepo) FindCategory(_ context.Context, id uint64) (*entities.FieldCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	copied.Fields = nil
	return &copied, nil
}

func (r *fakeCategoryRepo) CreateCategory(_ context.Context, name, description string) (uint64, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return 0, apperrors.ErrDuplicateName
		}
	}
	id := r.nextID
	r.nextID++
	r.categories[id] = &entities.FieldCategory{
		ID: id, Name: name, Description: description,
		SortOrder: len(r.categories) + 1, CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *fakeCategoryRepo) UpdateCategory(_ context.Context, id uint64, name, description *string) error {
	c, ok := r.categories[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if name != nil {
		for otherID, other := range r.categories {
			if otherID != id && other.Name == *name {
				return apperrors.ErrDuplicateName
			}
		}
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(_ context.Context, id uint64) error {
	if _, ok := r.categories[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeFieldRepo struct {
	fields map[uint64]*entities.FieldDefinition
	nextID uint64
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{fields: map[uint64]*entities.FieldDefinition{}, nextID: 1}
}

func (r *fakeFieldRepo) sorted(filter func(*entities.FieldDefinition) bool) []entities.FieldDefinition {
	result := make([]entities.FieldDefinition, 0, len(r.fields))
	for _, f := range r.fields {
		if filter == nil || filter(f) {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *fakeFieldRepo) GetAll(_ context.Context) ([]entities.FieldDefinition, error) {
	return r.sorted(nil), nil
}

func (r *fakeFieldRepo) GetByCategory(_ context.Context, categoryID uint64) ([]entities.FieldDefinition, error) {
	return r.sorted(func(f *entities.FieldDefinition) bool { return f.CategoryID == categoryID }), nil
}

func (r *fakeFieldRepo) FindByID(_ context.Context, id uint64) (*entities.FieldDefinition, error) {
	f, ok := r.fields[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFieldRepo) Create(_ context.Context, f entities.FieldDefinition) (uint64, error) {
	for _, existing := range r.fields {
		if existing.CategoryID == f.CategoryID && existing.Name == f.Name {
			return 0, apperrors.ErrDuplicateName
		}
	}
	f.ID = r.nextID
	r.nextID++
	maxOrder := 0
	for _, existing := range r.fields {
		if existing.CategoryID == f.CategoryID && existing.SortOrder > maxOrder {
			maxOrder = existing.SortOrder
		}
	}
	f.SortOrder = maxOrder + 1
	f.CreatedAt = time.Now()
	r.fields[f.ID] = &f
	return f.ID, nil
}

func (r *fakeFieldRepo) Update(_ context.Context, id uint64, f entities.FieldDefinition) error {
	existing, ok := r.fields[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.ID = id
	f.CategoryID = existing.CategoryID
	f.SortOrder = existing.SortOrder
	f.CreatedAt = existing.CreatedAt
	r.fields[id] = &f
	return nil
}

func (r *fakeFieldRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.fields[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.fields, id)
	return nil
}

func (r *fakeFieldRepo) ReorderFields(_ context.Context, categoryID uint64, orderedIDs []uint64) error {
	current := map[uint64]bool{}
	for _, f := range r.fields {
		if f.CategoryID == categoryID {
			current[f.ID] = true
		}
	}
	if len(orderedIDs) != len(current) {
		return apperrors.ErrInvalidOrder
	}
	seen := map[uint64]bool{}
	for _, id := range orderedIDs {
		if !current[id] || seen[id] {
			return apperrors.ErrInvalidOrder
		}
		seen[id] = true
	}
	for position, id := range orderedIDs {
		r.fields[id].SortOrder = position + 1
	}
	return nil
}

type fakeProfileRepo struct {
	profiles map[uint64]*entities.EmployeeProfile
	nextID   uint64
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uint64]*entities.EmployeeProfile{}, nextID: 1}
}

func (r *fakeProfileRepo) add(p entities.EmployeeProfile) *entities.EmployeeProfile {
	p.ID = r.nextID
	r.nextID++
	if p.Approval.Status == "" {
		p.Approval.Status = entities.ApprovalDraft
	}
	if p.Unlock.Status == "" {
		p.Unlock.Status = entities.UnlockNone
	}
	p.CreatedAt = time.Now()
	r.profiles[p.ID] = &p
	return &p
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uint64) (*entities.EmployeeProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) FindByUserID(_ context.Context, userID uint64) (*entities.EmployeeProfile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeProfileRepo) GetAll(_ context.Context, limit uint64, offset uint64) ([]entities.EmployeeProfile, uint64, error) {
	all := make([]entities.EmployeeProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := uint64(len(all))
	if offset >= total {
		return []entities.EmployeeProfile{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeProfileRepo) UpsertBaseInfo(_ context.Context, userID uint64, info entities.BaseInfo) (*entities.EmployeeProfile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			p.BaseInfo = info
			copied := *p
			return &copied, nil
		}
	}
	created := r.add(entities.EmployeeProfile{UserID: userID, BaseInfo: info})
	return created, nil
}

func (r *fakeProfileRepo) SaveCategoryValues(_ context.Context, userID uint64, categoryKey string, values map[string]interface{}) error {
	var profile *entities.EmployeeProfile
	for _, p := range r.profiles {
		if p.UserID == userID {
			profile = p
			break
		}
	}
	if profile == nil {
		created := r.add(entities.EmployeeProfile{UserID: userID})
		profile = r.profiles[created.ID]
	}
	if profile.CustomFields == nil {
		profile.CustomFields = map[string]map[string]interface{}{}
	}
	if profile.CustomFields[categoryKey] == nil {
		profile.CustomFields[categoryKey] = map[string]interface{}{}
	}
	for k, v := range values {
		profile.CustomFields[categoryKey][k] = v
	}
	return nil
}

func (r *fakeProfileRepo) SubmitForApproval(_ context.Context, profileID uint64, lockedFields []uint64) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if p.Approval.Status != entities.ApprovalDraft && p.Approval.Status != entities.ApprovalRejected {
		return apperrors.ErrConflict
	}
	now := time.Now()
	p.Approval = entities.ApprovalStatus{Status: entities.ApprovalSubmitted, SubmittedAt: &now}
	p.Unlock = entities.UnlockStatus{Status: entities.UnlockNone}
	p.LockedFields = lockedFields
	return nil
}

func (r *fakeProfileRepo) Review(_ context.Context, profileID uint64, approved bool, comments string) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if p.Approval.Status != entities.ApprovalSubmitted {
		return apperrors.ErrConflict
	}
	now := time.Now()
	if approved {
		p.Approval.Status = entities.ApprovalApproved
	} else {
		p.Approval.Status = entities.ApprovalRejected
	}
	p.Approval.ReviewedAt = &now
	p.Approval.ReviewComments = comments
	return nil
}

func (r *fakeProfileRepo) RequestUnlock(_ context.Context, profileID uint64, reason string) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return apperrors.ErrNotFound
	}
	approvalOK := p.Approval.Status == entities.ApprovalSubmitted || p.Approval.Status == entities.ApprovalApproved
	if !approvalOK || p.Unlock.Status == entities.UnlockRequested {
		return apperrors.ErrConflict
	}
	p.Unlock = entities.UnlockStatus{Status: entities.UnlockRequested, Reason: reason}
	return nil
}

func (r *fakeProfileRepo) ReviewUnlock(_ context.Context, profileID uint64, approved bool, comments string) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if p.Unlock.Status != entities.UnlockRequested {
		return apperrors.ErrConflict
	}
	now := time.Now()
	if approved {
		p.Unlock.Status = entities.UnlockApproved
	} else {
		p.Unlock.Status = entities.UnlockRejected
	}
	p.Unlock.ReviewedAt = &now
	p.Unlock.ReviewComments = comments
	return nil
}

func (r *fakeProfileRepo) ListPendingApprovals(_ context.Context) ([]entities.EmployeeProfile, error) {
	result := []entities.EmployeeProfile{}
	for _, p := range r.profiles {
		if p.Approval.Status == entities.ApprovalSubmitted {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeProfileRepo) ListPendingUnlocks(_ context.Context) ([]entities.EmployeeProfile, error) {
	result := []entities.EmployeeProfile{}
	for _, p := range r.profiles {
		if p.Unlock.Status == entities.UnlockRequested {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
