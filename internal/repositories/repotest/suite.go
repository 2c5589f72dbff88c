// Package repotest общий набор тестов для реализаций repositories.LinkRepository.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/shortcode"
	"github.com/stretchr/testify/suite"
)

var errAbort = errors.New("abort")

// LinkRepositorySuite проверяет контракт хранилища. NewRepo вызывается перед каждым тестом
// и должен возвращать пустое хранилище.
type LinkRepositorySuite struct {
	suite.Suite
	NewRepo func() repositories.LinkRepository

	repo repositories.LinkRepository
}

func (s *LinkRepositorySuite) SetupTest() {
	s.repo = s.NewRepo()
}

func (s *LinkRepositorySuite) ctx() context.Context {
	return s.T().Context()
}

func (s *LinkRepositorySuite) TestInsertWithCode() {
	url := gofakeit.URL()
	link, err := s.repo.InsertWithCode(s.ctx(), url, "alias")
	s.Require().NoError(err)
	s.NotZero(link.ID)
	s.Equal(url, link.OriginalURL)
	s.Equal("alias", link.Code)

	found, err := s.repo.FindByCode(s.ctx(), "alias")
	s.Require().NoError(err)
	s.Equal(link.ID, found.ID)
	s.Equal(url, found.OriginalURL)

	byURL, err := s.repo.FindByOriginalURL(s.ctx(), url)
	s.Require().NoError(err)
	s.Equal(link.ID, byURL.ID)
}

func (s *LinkRepositorySuite) TestInsertWithCode_Duplicate() {
	first, err := s.repo.InsertWithCode(s.ctx(), "https://first.example.com", "taken")
	s.Require().NoError(err)

	_, err = s.repo.InsertWithCode(s.ctx(), "https://second.example.com", "taken")
	s.Require().ErrorIs(err, repositories.ErrDuplicateKey)

	found, err := s.repo.FindByCode(s.ctx(), "taken")
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID)
	s.Equal("https://first.example.com", found.OriginalURL)

	_, err = s.repo.FindByOriginalURL(s.ctx(), "https://second.example.com")
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	next, err := s.repo.InsertWithCode(s.ctx(), "https://third.example.com", "free")
	s.Require().NoError(err)
	s.Equal(first.ID+1, next.ID, "failed insert must not consume an identifier")
}

func (s *LinkRepositorySuite) TestAllocatePlaceholder_UpdateCode() {
	url := gofakeit.URL()
	link, err := s.repo.AllocatePlaceholder(s.ctx(), url)
	s.Require().NoError(err)
	s.NotZero(link.ID)
	s.True(shortcode.IsPlaceholder(link.Code))

	_, err = s.repo.FindByOriginalURL(s.ctx(), url)
	s.Require().ErrorIs(err, repositories.ErrNotFound, "placeholder must not be visible by url")

	code := shortcode.MustEncode(link.ID)
	s.Require().NoError(s.repo.UpdateCode(s.ctx(), link.ID, code))

	found, err := s.repo.FindByCode(s.ctx(), code)
	s.Require().NoError(err)
	s.Equal(link.ID, found.ID)
	s.Equal(url, found.OriginalURL)

	_, err = s.repo.FindByCode(s.ctx(), link.Code)
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	byURL, err := s.repo.FindByOriginalURL(s.ctx(), url)
	s.Require().NoError(err)
	s.Equal(code, byURL.Code)
}

func (s *LinkRepositorySuite) TestUpdateCode_Duplicate() {
	alias, err := s.repo.InsertWithCode(s.ctx(), "https://alias.example.com", "b")
	s.Require().NoError(err)

	link, err := s.repo.AllocatePlaceholder(s.ctx(), "https://generated.example.com")
	s.Require().NoError(err)

	err = s.repo.UpdateCode(s.ctx(), link.ID, alias.Code)
	s.Require().ErrorIs(err, repositories.ErrDuplicateKey)

	found, err := s.repo.FindByCode(s.ctx(), alias.Code)
	s.Require().NoError(err)
	s.Equal(alias.ID, found.ID)
	s.Equal("https://alias.example.com", found.OriginalURL)
}

func (s *LinkRepositorySuite) TestUpdateCode_UnknownID() {
	err := s.repo.UpdateCode(s.ctx(), 100500, "code")
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepositorySuite) TestFindByCode_NotFound() {
	_, err := s.repo.FindByCode(s.ctx(), "missing")
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepositorySuite) TestFindByOriginalURL_LowestID() {
	url := gofakeit.URL()
	var links []*models.Link
	for _, code := range []string{"one", "two", "three"} {
		link, err := s.repo.InsertWithCode(s.ctx(), url, code)
		s.Require().NoError(err)
		links = append(links, link)
	}

	found, err := s.repo.FindByOriginalURL(s.ctx(), url)
	s.Require().NoError(err)
	s.Equal(links[0].ID, found.ID)
	s.Equal("one", found.Code)
}

func (s *LinkRepositorySuite) TestIdentifiersIncrease() {
	var prev uint
	for i := range 10 {
		var (
			link *models.Link
			err  error
		)
		if i%2 == 0 {
			link, err = s.repo.AllocatePlaceholder(s.ctx(), gofakeit.URL())
		} else {
			link, err = s.repo.InsertWithCode(s.ctx(), gofakeit.URL(), gofakeit.LetterN(12))
		}
		s.Require().NoError(err)
		s.Greater(link.ID, prev)
		prev = link.ID
	}
}

func (s *LinkRepositorySuite) TestTransaction_Commit() {
	url := gofakeit.URL()
	var code string
	err := s.repo.Transaction(s.ctx(), func(repo repositories.LinkRepository) error {
		link, err := repo.AllocatePlaceholder(s.ctx(), url)
		if err != nil {
			return err
		}
		code = shortcode.MustEncode(link.ID)
		return repo.UpdateCode(s.ctx(), link.ID, code)
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByCode(s.ctx(), code)
	s.Require().NoError(err)
	s.Equal(url, found.OriginalURL)
}

func (s *LinkRepositorySuite) TestTransaction_Rollback() {
	url := gofakeit.URL()
	var allocated *models.Link
	err := s.repo.Transaction(s.ctx(), func(repo repositories.LinkRepository) error {
		link, err := repo.AllocatePlaceholder(s.ctx(), url)
		if err != nil {
			return err
		}
		allocated = link
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)
	s.Require().NotNil(allocated)

	_, err = s.repo.FindByCode(s.ctx(), allocated.Code)
	s.Require().ErrorIs(err, repositories.ErrNotFound)
	_, err = s.repo.FindByOriginalURL(s.ctx(), url)
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	next, err := s.repo.AllocatePlaceholder(s.ctx(), url)
	s.Require().NoError(err)
	s.Greater(next.ID, allocated.ID, "identifiers must not be reused")
}

func (s *LinkRepositorySuite) TestTransaction_RollbackAfterConflict() {
	_, err := s.repo.InsertWithCode(s.ctx(), "https://alias.example.com", "c")
	s.Require().NoError(err)

	var allocated *models.Link
	err = s.repo.Transaction(s.ctx(), func(repo repositories.LinkRepository) error {
		link, err := repo.AllocatePlaceholder(s.ctx(), "https://generated.example.com")
		if err != nil {
			return err
		}
		allocated = link
		return repo.UpdateCode(s.ctx(), link.ID, "c")
	})
	s.Require().ErrorIs(err, repositories.ErrDuplicateKey)

	_, err = s.repo.FindByCode(s.ctx(), allocated.Code)
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	found, err := s.repo.FindByCode(s.ctx(), "c")
	s.Require().NoError(err)
	s.Equal("https://alias.example.com", found.OriginalURL)
}

func (s *LinkRepositorySuite) TestInsertWithCode_ConcurrentSameCode() {
	const workers = 20
	var (
		wg      sync.WaitGroup
		success atomic.Int32
		dup     atomic.Int32
		other   atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		url := fmt.Sprintf("https://race.example.com/%d", i)
		go func() {
			defer wg.Done()
			_, err := s.repo.InsertWithCode(context.Background(), url, "race")
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, repositories.ErrDuplicateKey):
				dup.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(workers-1), dup.Load())
	s.Zero(other.Load())
}
