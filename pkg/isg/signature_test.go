// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package isg

import (
	"testing"

	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoSignatureParsesReceiverParamsAndResults(t *testing.T) {
	g := NewGoSignature("func (s *Server) Run(ctx context.Context) error")
	require.NotNil(t, g)
	require.NotNil(t, g.Receiver)
	assert.Equal(t, "Server", g.Receiver.Type)
	require.Len(t, g.Params, 1)
	assert.Equal(t, "ctx", g.Params[0].Name)
	require.Len(t, g.Results, 1)
	assert.Equal(t, "error", g.Results[0].Type)
	assert.True(t, g.Valid())
}

func TestNewGoSignatureNilForNonFunc(t *testing.T) {
	assert.Nil(t, NewGoSignature("type Server struct{}"))
}

func TestNilGoSignatureIsValid(t *testing.T) {
	var g *GoSignature
	assert.True(t, g.Valid())
}

func TestNewLocatedEntityPopulatesGoSignatureForGoEntities(t *testing.T) {
	e := NewLocatedEntity(LangGo, KindFunction, "Run", interning.NameID(1),
		Location{FileID: 1, LineStart: 1, LineEnd: 1}, "server.go",
		"func (s *Server) Run(ctx context.Context) error", "func (s *Server) Run(ctx context.Context) error {}")
	require.NoError(t, e.Validate())
	require.NotNil(t, e.Signature.Go)
	assert.Equal(t, "Server", e.Signature.Go.Receiver.Type)
}

func TestNewLocatedEntityLeavesGoSignatureNilForOtherLanguages(t *testing.T) {
	e := NewLocatedEntity(LangRust, KindFunction, "helper", interning.NameID(1),
		Location{FileID: 1, LineStart: 1, LineEnd: 1}, "src/main.rs", "fn helper()", "fn helper() {}")
	require.NoError(t, e.Validate())
	assert.Nil(t, e.Signature.Go)
}
