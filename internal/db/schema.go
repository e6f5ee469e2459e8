package db

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY,
  text TEXT NOT NULL,
  type TEXT NOT NULL,
  correct_answer TEXT NOT NULL DEFAULT '',
  options_json TEXT NOT NULL DEFAULT '[]',
  marks INTEGER NOT NULL DEFAULT 1,
  grade_min INTEGER NOT NULL DEFAULT 1,
  grade_max INTEGER NOT NULL DEFAULT 9
);

CREATE TABLE IF NOT EXISTS quizzes (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  time_limit_minutes INTEGER NOT NULL DEFAULT 0,
  pass_mark_percent INTEGER NOT NULL DEFAULT 0,
  calculator_allowed INTEGER NOT NULL DEFAULT 0,
  shuffle_questions INTEGER NOT NULL DEFAULT 0,
  attempt_limit INTEGER NOT NULL DEFAULT 0,
  published INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS quiz_questions (
  quiz_id INTEGER NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  order_num INTEGER NOT NULL,
  UNIQUE (quiz_id, order_num),
  UNIQUE (quiz_id, question_id)
);

CREATE TABLE IF NOT EXISTS content (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  quiz_id INTEGER REFERENCES quizzes(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS user_progress (
  id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  content_id INTEGER NOT NULL,
  quiz_id INTEGER,
  completion INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  score INTEGER,
  grade REAL,
  answers TEXT NOT NULL DEFAULT '{}',
  answer_scores TEXT NOT NULL DEFAULT '{}',
  sessions_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (user_id, content_id)
);

CREATE INDEX IF NOT EXISTS idx_user_progress_quiz ON user_progress(quiz_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS questions (
  id BIGINT PRIMARY KEY,
  text TEXT NOT NULL,
  type TEXT NOT NULL,
  correct_answer TEXT NOT NULL DEFAULT '',
  options_json TEXT NOT NULL DEFAULT '[]',
  marks INTEGER NOT NULL DEFAULT 1,
  grade_min INTEGER NOT NULL DEFAULT 1,
  grade_max INTEGER NOT NULL DEFAULT 9
);

CREATE TABLE IF NOT EXISTS quizzes (
  id BIGINT PRIMARY KEY,
  title TEXT NOT NULL,
  time_limit_minutes INTEGER NOT NULL DEFAULT 0,
  pass_mark_percent INTEGER NOT NULL DEFAULT 0,
  calculator_allowed BOOLEAN NOT NULL DEFAULT FALSE,
  shuffle_questions BOOLEAN NOT NULL DEFAULT FALSE,
  attempt_limit INTEGER NOT NULL DEFAULT 0,
  published BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS quiz_questions (
  quiz_id BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  order_num INTEGER NOT NULL,
  UNIQUE (quiz_id, order_num),
  UNIQUE (quiz_id, question_id)
);

CREATE TABLE IF NOT EXISTS content (
  id BIGINT PRIMARY KEY,
  title TEXT NOT NULL,
  quiz_id BIGINT REFERENCES quizzes(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS user_progress (
  id TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL,
  content_id BIGINT NOT NULL,
  quiz_id BIGINT,
  completion INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  score INTEGER,
  grade DOUBLE PRECISION,
  answers TEXT NOT NULL DEFAULT '{}',
  answer_scores TEXT NOT NULL DEFAULT '{}',
  sessions_count INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL,
  UNIQUE (user_id, content_id)
);

CREATE INDEX IF NOT EXISTS idx_user_progress_quiz ON user_progress(quiz_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
