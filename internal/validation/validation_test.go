// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"
)

type validationTestSuite struct {
	suite.Suite
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
		s.Assert().False(chain.failFast)
	})
	s.Run("new chain with fail fast", func() {
		s.Assert().True(New(FailFast()).failFast)
	})
}

func (s *validationTestSuite) TestValidate() {
	pattern := regexp.MustCompile(`^[a-z]+$`)
	s.Run("with no violation", func() {
		err := New().
			AddValidator(NewEmptyStringValidator("name", "value")).
			AddValidator(NewPatternValidator(pattern, "value", nil)).
			Validate()
		s.Assert().NoError(err)
	})
	s.Run("with all errors", func() {
		chain := New().
			AddValidator(NewPatternValidator(pattern, "  ", nil)).
			AddValidator(NewEmptyStringValidator("name", "  "))

		err := chain.Validate()
		s.Require().Error(err)
		s.Assert().Len(multierr.Errors(err), 2)
		s.Assert().EqualError(multierr.Errors(err)[1], "the [name] is required")

		// violations do not pile up across runs
		s.Assert().Len(multierr.Errors(chain.Validate()), 2)
	})
	s.Run("with fail fast", func() {
		err := New(FailFast()).
			AddValidator(NewEmptyStringValidator("first", "")).
			AddValidator(NewEmptyStringValidator("second", "")).
			Validate()
		s.Assert().EqualError(err, "the [first] is required")
	})
}

func (s *validationTestSuite) TestPatternValidator() {
	pattern := regexp.MustCompile(`^[a-z]+\.[a-z]+$`)
	custom := errors.New("bad name")

	s.Assert().NoError(NewPatternValidator(pattern, "abc.def", nil).Validate())
	s.Assert().EqualError(NewPatternValidator(pattern, "abc", nil).Validate(), `invalid expression "abc"`)
	s.Assert().ErrorIs(NewPatternValidator(pattern, "abc", custom).Validate(), custom)
}
