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

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvDefaultString(t *testing.T) {
	require.Equal(t, "fallback", EnvDefaultString("LINEAGE_TEST_UNSET", "fallback"))

	t.Setenv("LINEAGE_TEST_STR", "value")
	require.Equal(t, "value", EnvDefaultString("LINEAGE_TEST_STR", "fallback"))
}

func TestEnvDefaultBool(t *testing.T) {
	require.True(t, EnvDefaultBool("LINEAGE_TEST_UNSET", true))

	t.Setenv("LINEAGE_TEST_BOOL", "true")
	require.True(t, EnvDefaultBool("LINEAGE_TEST_BOOL", false))

	t.Setenv("LINEAGE_TEST_BOOL", "notabool")
	require.False(t, EnvDefaultBool("LINEAGE_TEST_BOOL", false))
}

func TestEnvDefaultInt(t *testing.T) {
	require.Equal(t, 7, EnvDefaultInt("LINEAGE_TEST_UNSET", 7))

	t.Setenv("LINEAGE_TEST_INT", "42")
	require.Equal(t, 42, EnvDefaultInt("LINEAGE_TEST_INT", 7))

	t.Setenv("LINEAGE_TEST_INT", "notanint")
	require.Equal(t, 7, EnvDefaultInt("LINEAGE_TEST_INT", 7))
}
