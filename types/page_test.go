/*
 * Copyright 2026 lineage-db.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	require.Equal(t, 1, p.GetPage())
	require.Equal(t, 10, p.GetPageSize())
	require.Equal(t, 0, p.GetOffset())
	require.Nil(t, p.GetFilter())
	require.Empty(t, p.GetOrders())
}

func TestPageRequestOffset(t *testing.T) {
	p := NewDefaultPageRequest(3, 20)
	require.Equal(t, 40, p.GetOffset())
}

func TestQueryFilter(t *testing.T) {
	f := NewQueryFilter("parent_uid = ?", 2)
	require.Equal(t, "parent_uid = ?", f.Schema)
	require.Equal(t, []interface{}{2}, f.Args)
}

func TestNewDefaultPagination(t *testing.T) {
	p := NewDefaultPagination[struct{}](2, 5)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 5, p.PageSize)
	require.Zero(t, p.Total)
	require.Empty(t, p.Items)
}
