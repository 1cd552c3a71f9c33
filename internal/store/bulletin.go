package store

import (
	"errors"

	"gorm.io/gorm"
)

var ErrBulletinNotFound = errors.New("bulletin not found")

// Bulletin is a public post on the board. Sticky bulletins sort ahead of the
// rest regardless of age.
type Bulletin struct {
	gorm.Model
	Title   string
	Content string
	Author  string
	Sticky  bool
}

// BulletinRead records that a user has opened a bulletin, for unread markers.
type BulletinRead struct {
	gorm.Model
	BulletinID uint   `gorm:"index:idx_bulletin_reader,unique"`
	Username   string `gorm:"index:idx_bulletin_reader,unique"`
}

func (s *Store) PostBulletin(title, content, author string) (*Bulletin, error) {
	b := Bulletin{
		Title:   title,
		Content: content,
		Author:  author,
	}
	if err := s.DB.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBulletins returns bulletins newest first, sticky ones on top.
func (s *Store) ListBulletins() ([]Bulletin, error) {
	var bulletins []Bulletin
	err := s.DB.Order("sticky DESC, created_at DESC").Find(&bulletins).Error
	return bulletins, err
}

func (s *Store) FindBulletin(id uint) (*Bulletin, error) {
	var b Bulletin
	if err := s.DB.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBulletinNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) SetBulletinSticky(id uint, sticky bool) error {
	return s.DB.Model(&Bulletin{}).Where("id = ?", id).Update("sticky", sticky).Error
}

func (s *Store) RemoveBulletin(id uint) error {
	return s.DB.Unscoped().Delete(&Bulletin{}, id).Error
}

// MarkBulletinRead records that username has read the bulletin. Reading twice
// is not an error.
func (s *Store) MarkBulletinRead(id uint, username string) error {
	var existing BulletinRead
	err := s.DB.Where("bulletin_id = ? AND username = ?", id, username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.DB.Create(&BulletinRead{BulletinID: id, Username: username}).Error
}

func (s *Store) IsBulletinRead(id uint, username string) (bool, error) {
	var count int64
	err := s.DB.Model(&BulletinRead{}).
		Where("bulletin_id = ? AND username = ?", id, username).
		Count(&count).Error
	return count > 0, err
}

// CountUnreadBulletins returns how many bulletins username has never opened.
func (s *Store) CountUnreadBulletins(username string) (int64, error) {
	var total, read int64
	if err := s.DB.Model(&Bulletin{}).Count(&total).Error; err != nil {
		return 0, err
	}
	err := s.DB.Model(&BulletinRead{}).Where("username = ?", username).Count(&read).Error
	if err != nil {
		return 0, err
	}
	if read > total {
		return 0, nil
	}
	return total - read, nil
}
