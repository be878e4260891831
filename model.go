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

package lineage

import (
	"github.com/lineage-db/lineage/database"

	"github.com/uptrace/bun"
)

// Parent is a referenced record. Its uid is the target of every child's
// foreign key.
type Parent struct {
	bun.BaseModel `bun:"table:parents,alias:p"`

	UID        int64  `bun:"uid,pk" json:"uid"`
	ParentName string `bun:"parent_name,notnull" json:"parent_name"`
}

// Child references a Parent by uid. While enforcement is active the engine
// rejects inserts whose parent_uid matches no parent and removes children
// when their parent is deleted; without enforcement the same writes succeed
// and can leave dangling references.
type Child struct {
	bun.BaseModel `bun:"table:children,alias:c"`

	ParentUID int64  `bun:"parent_uid" json:"parent_uid"`
	ChildName string `bun:"child_name,notnull" json:"child_name"`
}

// ForeignKeys declares the child table's reference with full cascade
// policy. The update cascade renumbers children when a parent uid changes;
// the delete cascade removes them with their parent.
func (*Child) ForeignKeys() []database.ForeignKeyConstraint {
	return []database.ForeignKeyConstraint{
		{
			Table:           "children",
			Column:          "parent_uid",
			ReferenceTable:  "parents",
			ReferenceColumn: "uid",
			OnUpdate:        "CASCADE",
			OnDelete:        "CASCADE",
		},
	}
}

func init() {
	// Parents before children: the child table references parents and must
	// be created after it and dropped before it.
	database.RegisterModel(database.NewModelAdapter((*Parent)(nil), 1))
	database.RegisterModel(database.NewModelAdapter((*Child)(nil), 2))
}
