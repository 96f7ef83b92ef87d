package inmemdb

import "github.com/unicampus/backend/core/pessoa"

func (t *tables) insertPessoa(p pessoa.Pessoa) pessoa.Pessoa {
	p.ID = t.nextID("pessoas")
	t.pessoas[p.ID] = p
	return pessoa.Pessoa{ID: p.ID}
}

func (t *tables) pessoa(id int) pessoa.Pessoa {
	return t.pessoas[id]
}

func (t *tables) deletePessoas(ids ...int) {
	for _, id := range ids {
		delete(t.pessoas, id)
	}
}
