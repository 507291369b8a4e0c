package gateway

// Operation is a single named GraphQL document sent to the backend.
type Operation struct {
	Name string
	Doc  string
}

// The fixed operation set consumed from the backend. Documents follow the
// Hasura dialect; the backend is otherwise a black box.
var (
	// LoginUser is the token-issuing login contract: the server verifies
	// the password and returns a token plus the user record.
	LoginUser = Operation{
		Name: "LoginUser",
		Doc: `mutation LoginUser($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    token
    user {
      id
      email
      name
    }
  }
}`,
	}

	// FindUserByEmail is the development-only lookup login: it matches a
	// user record by email with no password verification.
	FindUserByEmail = Operation{
		Name: "FindUserByEmail",
		Doc: `query FindUserByEmail($email: String!) {
  users(where: { email: { _eq: $email } }, limit: 1) {
    id
    email
    name
  }
}`,
	}

	CreateUser = Operation{
		Name: "CreateUser",
		Doc: `mutation CreateUser($email: String!, $name: String!, $password: String!) {
  insert_users_one(object: { email: $email, name: $name, password: $password }) {
    id
    email
    name
    created_at
  }
}`,
	}

	GetTasks = Operation{
		Name: "GetTasks",
		Doc: `query GetTasks($userId: uuid!) {
  tasks(where: { user_id: { _eq: $userId } }, order_by: { created_at: desc }) {
    id
    title
    description
    completed
    created_at
    updated_at
  }
}`,
	}

	CreateTask = Operation{
		Name: "CreateTask",
		Doc: `mutation CreateTask($title: String!, $description: String, $userId: uuid!) {
  insert_tasks_one(object: { title: $title, description: $description, user_id: $userId }) {
    id
    title
    description
    completed
    created_at
  }
}`,
	}

	UpdateTask = Operation{
		Name: "UpdateTask",
		Doc: `mutation UpdateTask($id: uuid!, $title: String, $description: String) {
  update_tasks_by_pk(pk_columns: { id: $id }, _set: { title: $title, description: $description }) {
    id
    title
    description
    completed
    updated_at
  }
}`,
	}

	ToggleTask = Operation{
		Name: "ToggleTask",
		Doc: `mutation ToggleTask($id: uuid!, $completed: Boolean!) {
  update_tasks_by_pk(pk_columns: { id: $id }, _set: { completed: $completed }) {
    id
    completed
  }
}`,
	}

	DeleteTask = Operation{
		Name: "DeleteTask",
		Doc: `mutation DeleteTask($id: uuid!) {
  delete_tasks_by_pk(id: $id) {
    id
  }
}`,
	}
)
